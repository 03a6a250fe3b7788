// Package dataparser defines the versioned bind/dump contract between
// domain records and the data tree (spec.md §4.F). The core never
// dereferences a record's concrete layout; it only knows TypeTags and
// routes through whichever Parser instance the request's
// {data_parser} path segment resolved to.
package dataparser

import (
	"fmt"
	"sync"

	"slurmrestd/internal/envelope"
	"slurmrestd/internal/tree"
)

// TypeTag is a stable identifier for a record shape a Parser can
// PARSE/DUMP, e.g. JobDescMsg, JobInfoMsg, KillJobsMsg.
type TypeTag string

// Parser is implemented once per API revision (v0.0.39, and any future
// revision negotiated by the {data_parser} path segment).
type Parser interface {
	// Name is the revision string this parser answers to, e.g. "v0.0.39".
	Name() string

	// Parse decodes node into out according to tag, appending descriptive
	// errors to env under parentPath. It returns a non-zero envelope.Code
	// on type mismatch, zero on success.
	Parse(tag TypeTag, out any, node *tree.Value, parentPath string, env *envelope.Envelope) envelope.Code

	// Dump encodes record into a freshly-built tree node for tag.
	Dump(tag TypeTag, record any, env *envelope.Envelope) *tree.Value

	// Assign passes per-connection state (e.g. a backend handle) into
	// the parser so PARSE/DUMP implementations needing it can reach it
	// without a global.
	Assign(attribute string, value any)

	// Specify folds this parser's type-specific additions into an
	// OpenAPI spec document tree.
	Specify(specTree *tree.Value)
}

// registry holds every constructed Parser keyed by its revision name,
// guarded the way the reference stack's universal.zRegistry guards its
// provider map: RWMutex, read-locked lookups, write-locked registration.
type registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

var (
	globalRegistry     *registry
	globalRegistryOnce sync.Once
)

// Registry returns the process-wide parser registry, built once.
func Registry() *registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &registry{parsers: make(map[string]Parser)}
	})
	return globalRegistry
}

// Register installs p under its own Name(). Re-registration overwrites
// the previous instance for that name — used by tests to swap in a
// fake parser.
func (r *registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.Name()] = p
}

// Lookup resolves a {data_parser} path segment to its Parser.
func (r *registry) Lookup(name string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[name]
	if !ok {
		return nil, fmt.Errorf("dataparser: unknown revision %q", name)
	}
	return p, nil
}

// ErrTypeMismatch is returned (informationally; handlers read the
// envelope code) when PARSE cannot coerce the tree node to out's shape.
type ErrTypeMismatch struct {
	Tag  TypeTag
	Want string
	Path string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("dataparser: %s: expected %s at %s", e.Tag, e.Want, e.Path)
}
