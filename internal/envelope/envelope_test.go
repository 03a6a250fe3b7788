package envelope

import "testing"

func TestRespErrorSetsResultCodeOnce(t *testing.T) {
	e := New(Meta{})
	if !e.OK() {
		t.Fatalf("new envelope should be OK")
	}
	e.RespError(CodeInvalidJobID, "load_job", "unknown job %d", 42)
	if e.OK() {
		t.Fatalf("expected envelope to record an error")
	}
	if e.ResultCode() != CodeInvalidJobID {
		t.Fatalf("expected CodeInvalidJobID, got %v", e.ResultCode())
	}

	// A second error must not overwrite the first recorded code.
	e.RespError(CodeDataPathNotFound, "dump_job", "missing field")
	if e.ResultCode() != CodeInvalidJobID {
		t.Fatalf("result code changed after second error: %v", e.ResultCode())
	}
	if len(e.Errors) != 2 {
		t.Fatalf("expected 2 error entries, got %d", len(e.Errors))
	}
}

func TestRespWarnNeverSetsResultCode(t *testing.T) {
	e := New(Meta{})
	e.RespWarn("load_jobs", "no change since %d", 100)
	if !e.OK() {
		t.Fatalf("warnings must not affect result code")
	}
	if len(e.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(e.Warnings))
	}
}

func TestErrorsAndWarningsPreserveOrder(t *testing.T) {
	e := New(Meta{})
	e.RespError(CodeRestInvalidQuery, "a", "first")
	e.RespError(CodeDataEmptyResult, "b", "second")
	e.RespError(CodeDBConnection, "c", "third")
	for i, want := range []string{"first", "second", "third"} {
		if e.Errors[i].Description != want {
			t.Fatalf("errors[%d] = %q, want %q", i, e.Errors[i].Description, want)
		}
	}
}

func TestRespErrorReturnsCode(t *testing.T) {
	e := New(Meta{})
	got := e.RespError(CodeNotSupported, "x", "unsupported op")
	if got != CodeNotSupported {
		t.Fatalf("expected RespError to return the code, got %v", got)
	}
}

func TestToTreeShape(t *testing.T) {
	e := New(Meta{
		Plugin: PluginMeta{Type: "openapi/v0.0.39", Name: "Slurm REST API"},
		Slurm:  SlurmMeta{Release: "25.05", Version: SlurmVersion{Major: 25, Minor: 5, Micro: 0}},
		Client: ClientMeta{Source: "127.0.0.1", UID: 1000, GID: 1000},
	})
	e.RespError(CodeInvalidJobID, "load_job", "unknown job")
	e.RespWarn("load_jobs", "no change")

	v := e.ToTree("jobs", nil)
	if v.DictLen() != 3 {
		t.Fatalf("expected meta/errors/warnings keys only, got %d", v.DictLen())
	}
	errs, _ := v.DictKeyGet("errors")
	if errs.ListLen() != 1 {
		t.Fatalf("expected 1 error in tree, got %d", errs.ListLen())
	}
	warns, _ := v.DictKeyGet("warnings")
	if warns.ListLen() != 1 {
		t.Fatalf("expected 1 warning in tree, got %d", warns.ListLen())
	}
}
