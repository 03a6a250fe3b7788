package v0039

import (
	"testing"

	"slurmrestd/internal/dataparser"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/tree"
)

func TestParseJobDescMsg(t *testing.T) {
	p := New()
	node := tree.Dict(
		tree.S("name", "probe"),
		tree.S("script", "#!/bin/sh\necho hi"),
		tree.S("partition", "debug"),
		tree.I("min_nodes", 2),
	)
	env := envelope.New(envelope.Meta{})
	var rec JobDescMsg
	code := p.Parse(TagJobDescMsg, &rec, node, "/job/submit", env)
	if code != envelope.CodeNone {
		t.Fatalf("Parse returned %v, errors=%v", code, env.Errors)
	}
	if rec.Name != "probe" || rec.Partition != "debug" || rec.MinNodes != 2 {
		t.Fatalf("unexpected bind: %+v", rec)
	}
}

func TestParseJobDescMsgTypeMismatch(t *testing.T) {
	p := New()
	node := tree.Dict(tree.V("name", tree.List(tree.NewInt64(1))))
	env := envelope.New(envelope.Meta{})
	var rec JobDescMsg
	code := p.Parse(TagJobDescMsg, &rec, node, "/job/submit", env)
	if code == envelope.CodeNone {
		t.Fatalf("expected type-mismatch error")
	}
	if len(env.Errors) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(env.Errors))
	}
}

func TestParseUpdateNodeMsgWarnsOnNodeNames(t *testing.T) {
	p := New()
	node := tree.Dict(tree.S("node_names", "node01"), tree.S("state", "DOWN"))
	env := envelope.New(envelope.Meta{})
	var rec UpdateNodeMsg
	code := p.Parse(TagUpdateNodeMsg, &rec, node, "/node/node01", env)
	if code != envelope.CodeNone {
		t.Fatalf("unexpected error: %v", env.Errors)
	}
	if len(env.Warnings) != 1 {
		t.Fatalf("expected 1 warning for ignored node_names, got %d", len(env.Warnings))
	}
	if rec.State != "DOWN" {
		t.Fatalf("expected state DOWN, got %q", rec.State)
	}
}

func TestParseUpdateNodeMsgRejectsUnknownState(t *testing.T) {
	p := New()
	node := tree.Dict(tree.S("state", "NOT_A_REAL_STATE"))
	env := envelope.New(envelope.Meta{})
	var rec UpdateNodeMsg
	code := p.Parse(TagUpdateNodeMsg, &rec, node, "/node/node01", env)
	if code != envelope.CodeDataFieldInvalid {
		t.Fatalf("code = %v, want CodeDataFieldInvalid", code)
	}
}

func TestParseJobDescMsgRejectsNegativeMinNodes(t *testing.T) {
	p := New()
	node := tree.Dict(tree.S("name", "probe"), tree.I("min_nodes", -1))
	env := envelope.New(envelope.Meta{})
	var rec JobDescMsg
	code := p.Parse(TagJobDescMsg, &rec, node, "/job/submit", env)
	if code != envelope.CodeDataFieldInvalid {
		t.Fatalf("code = %v, want CodeDataFieldInvalid", code)
	}
}

func TestParseUserRecWarnsOnIgnoredFields(t *testing.T) {
	p := New()
	node := tree.Dict(
		tree.S("name", "alice"),
		tree.V("associations", tree.List()),
		tree.V("coordinators", tree.List()),
	)
	env := envelope.New(envelope.Meta{})
	var rec UserRec
	code := p.Parse(TagUserRec, &rec, node, "/slurmdb/users", env)
	if code != envelope.CodeNone {
		t.Fatalf("unexpected error: %v", env.Errors)
	}
	if len(env.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(env.Warnings))
	}
}

func TestDumpJobInfoMsg(t *testing.T) {
	p := New()
	env := envelope.New(envelope.Meta{})
	rec := &JobInfoMsg{JobID: 42, Name: "probe", JobState: "RUNNING"}
	node := p.Dump(TagJobInfoMsg, rec, env)
	jobID, _ := node.DictKeyGet("job_id")
	n, _ := jobID.Int64()
	if n != 42 {
		t.Fatalf("expected job_id=42, got %v", n)
	}
}

func TestRegistryLookupFindsV0039(t *testing.T) {
	p, err := dataparser.Registry().Lookup("v0.0.39")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Name() != "v0.0.39" {
		t.Fatalf("expected v0.0.39, got %s", p.Name())
	}
}
