package refstore

import (
	"context"
	"testing"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
)

func newTestStore() *Store {
	return &Store{
		jobs:         make(map[string]*v0039.JobInfoMsg),
		nodes:        make(map[string]*v0039.NodeInfoMsg),
		partitions:   make(map[string]*v0039.PartitionInfoMsg),
		reservations: make(map[string]*v0039.ReservationInfoMsg),
		nextJobID:    1,
	}
}

func TestSubmitAndLoadJob(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	resp, rc := s.SubmitJob(ctx, &v0039.JobDescMsg{Name: "hello", Partition: "debug"})
	if rc != backend.RCSuccess {
		t.Fatalf("submit rc = %v", rc)
	}
	if resp.JobID != 1 {
		t.Fatalf("job id = %d, want 1", resp.JobID)
	}

	jobs, lastUpdate, rc := s.LoadJobs(ctx, 0, 0)
	if rc != backend.RCSuccess || len(jobs) != 1 {
		t.Fatalf("load jobs = %v, %v", jobs, rc)
	}
	if lastUpdate != jobs[0].LastUpdate {
		t.Fatalf("lastUpdate mismatch: %d vs %d", lastUpdate, jobs[0].LastUpdate)
	}
	if jobs[0].JobState != "PENDING" {
		t.Fatalf("job state = %q, want PENDING", jobs[0].JobState)
	}
}

func TestAllocateJobMarksRunning(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	resp, rc := s.AllocateJob(ctx, &v0039.JobDescMsg{Name: "alloc"})
	if rc != backend.RCSuccess {
		t.Fatalf("allocate rc = %v", rc)
	}
	job, rc := s.LoadJob(ctx, itoa(resp.JobID))
	if rc != backend.RCSuccess {
		t.Fatalf("load job rc = %v", rc)
	}
	if job.JobState != "RUNNING" {
		t.Fatalf("job state = %q, want RUNNING", job.JobState)
	}
}

func TestKillJobsReportsMissingAndCancelled(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	resp, _ := s.SubmitJob(ctx, &v0039.JobDescMsg{Name: "target"})
	results, rc := s.KillJobs(ctx, &v0039.KillJobsMsg{JobIDs: []string{itoa(resp.JobID), "999"}})
	if rc != backend.RCSuccess {
		t.Fatalf("kill rc = %v", rc)
	}
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if results[0].RC != int64(backend.RCSuccess) {
		t.Fatalf("result[0].RC = %d", results[0].RC)
	}
	if results[1].RC != int64(backend.RCError) {
		t.Fatalf("result[1].RC = %d, want error", results[1].RC)
	}

	job, _ := s.LoadJob(ctx, itoa(resp.JobID))
	if job.JobState != "CANCELLED" {
		t.Fatalf("job state = %q, want CANCELLED", job.JobState)
	}
}

func TestUpdateNodeCreatesThenUpdates(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	if rc := s.UpdateNode(ctx, &v0039.UpdateNodeMsg{NodeNames: "node01", State: "DOWN"}); rc != backend.RCSuccess {
		t.Fatalf("update node rc = %v", rc)
	}
	n, rc := s.LoadNodeSingle(ctx, "node01")
	if rc != backend.RCSuccess || n.State != "DOWN" {
		t.Fatalf("node = %+v, rc = %v", n, rc)
	}

	if rc := s.UpdateNode(ctx, &v0039.UpdateNodeMsg{NodeNames: "node01", State: "IDLE"}); rc != backend.RCSuccess {
		t.Fatalf("second update rc = %v", rc)
	}
	n, _ = s.LoadNodeSingle(ctx, "node01")
	if n.State != "IDLE" {
		t.Fatalf("state = %q, want IDLE", n.State)
	}
}

func TestDeleteNodeUnknownErrors(t *testing.T) {
	s := newTestStore()
	if rc := s.DeleteNode(context.Background(), "ghost"); rc != backend.RCError {
		t.Fatalf("rc = %v, want RCError", rc)
	}
}

func TestWhereFromCondEmpty(t *testing.T) {
	where, args := whereFromCond(nil)
	if where != "" || args != nil {
		t.Fatalf("where = %q args = %v, want empty", where, args)
	}
}

func TestWhereFromCondSingle(t *testing.T) {
	where, args := whereFromCond(map[string]string{"name": "foo"})
	if where != ` WHERE "name" = $1` {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 1 || args[0] != "foo" {
		t.Fatalf("args = %v", args)
	}
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
