// Package operations registers and implements every endpoint handler
// named in spec.md §4.I against the internal/restapi framework: one
// file per entity family, each with an init() that wires its patterns
// into the global router via restapi.RegisterOperation.
package operations

import (
	"fmt"
	"regexp"
)

// compositeJobID is the parsed form of the grammar spec.md §6 names:
// jobid(+het)?(_array)?(\.step)?, every suffix optional and numeric.
type compositeJobID struct {
	JobID       string
	HetOffset   string
	ArrayTaskID string
	StepID      string
}

var jobIDPattern = regexp.MustCompile(`^(\d+)(?:\+(\d+))?(?:_(\d+))?(?:\.(\d+))?$`)

// parseCompositeJobID splits raw into its components, or returns an
// error if raw does not match the grammar at all.
func parseCompositeJobID(raw string) (compositeJobID, error) {
	m := jobIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return compositeJobID{}, fmt.Errorf("malformed job id %q", raw)
	}
	return compositeJobID{JobID: m[1], HetOffset: m[2], ArrayTaskID: m[3], StepID: m[4]}, nil
}

// loadID is the identifier string handed to backend.Client.LoadJob: the
// numeric job id, plus a het offset when present.
func (c compositeJobID) loadID() string {
	if c.HetOffset != "" {
		return c.JobID + "+" + c.HetOffset
	}
	return c.JobID
}
