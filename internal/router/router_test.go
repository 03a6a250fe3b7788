package router

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	t1 := r.Register("/slurm/v0.0.39/job/{job_id}", GET)
	t2 := r.Register("/slurm/v0.0.39/job/{job_id}", POST)
	if t1 != t2 {
		t.Fatalf("re-registration produced a new tag: %d vs %d", t1, t2)
	}
}

func TestFindCapturesPlaceholder(t *testing.T) {
	r := New()
	tag := r.Register("/slurm/{data_parser}/job/{job_id}", GET)

	got, params, err := r.Find([]string{"slurm", "v0.0.39", "job", "123"}, GET)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != tag {
		t.Fatalf("expected tag %d, got %d", tag, got)
	}
	dp, _ := params.DictKeyGet("data_parser")
	s, _ := dp.String()
	if s != "v0.0.39" {
		t.Fatalf("expected data_parser=v0.0.39, got %q", s)
	}
	jid, _ := params.DictKeyGet("job_id")
	s2, _ := jid.String()
	if s2 != "123" {
		t.Fatalf("expected job_id=123, got %q", s2)
	}
}

func TestFindUnregisteredReturnsZero(t *testing.T) {
	r := New()
	r.Register("/slurm/{data_parser}/jobs/", GET)
	tag, _, err := r.Find([]string{"not", "a", "path"}, GET)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Unregistered {
		t.Fatalf("expected Unregistered, got %d", tag)
	}
}

func TestFindMethodMismatchIsDistinctFromNotFound(t *testing.T) {
	r := New()
	r.Register("/slurm/{data_parser}/jobs", GET)
	_, _, err := r.Find([]string{"slurm", "v0.0.39", "jobs"}, POST)
	if err == nil {
		t.Fatalf("expected a method-mismatch error")
	}
	if _, ok := err.(*ErrMethodMismatch); !ok {
		t.Fatalf("expected *ErrMethodMismatch, got %T: %v", err, err)
	}
}

func TestLongestLiteralMatchWins(t *testing.T) {
	r := New()
	generic := r.Register("/slurm/{data_parser}/job/{job_id}", GET)
	specific := r.Register("/slurm/{data_parser}/job/state", GET)

	tag, _, err := r.Find([]string{"slurm", "v0.0.39", "job", "state"}, GET)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if tag != specific {
		t.Fatalf("expected literal route %d to win over placeholder route %d, got %d", specific, generic, tag)
	}
}
