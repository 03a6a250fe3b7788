package refstore

import (
	"context"
	"fmt"
	"sort"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
)

// LoadJobs returns every job with LastUpdate >= updateTime (flags is
// accepted for interface parity with the RPC surface but unused by this
// simulation — the reference backend has no SHOW_DETAIL/SHOW_ALL split).
func (s *Store) LoadJobs(ctx context.Context, updateTime int64, flags int64) ([]*v0039.JobInfoMsg, int64, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*v0039.JobInfoMsg, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.LastUpdate >= updateTime {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].JobID < out[k].JobID })
	return out, s.lastUpdate, backend.RCSuccess
}

func (s *Store) LoadJob(ctx context.Context, jobID string) (*v0039.JobInfoMsg, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, backend.RCError
	}
	cp := *j
	return &cp, backend.RCSuccess
}

func (s *Store) KillJobs(ctx context.Context, req *v0039.KillJobsMsg) ([]*v0039.JobResultEntry, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*v0039.JobResultEntry, 0, len(req.JobIDs))
	for _, id := range req.JobIDs {
		j, ok := s.jobs[id]
		if !ok {
			results = append(results, &v0039.JobResultEntry{JobID: id, Error: "job not found", RC: int64(backend.RCError)})
			continue
		}
		j.JobState = "CANCELLED"
		results = append(results, &v0039.JobResultEntry{JobID: id, RC: int64(backend.RCSuccess)})
	}
	return results, backend.RCSuccess
}

func (s *Store) UpdateJob(ctx context.Context, jobID string, desc *v0039.JobDescMsg) ([]*v0039.JobResultEntry, string, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return []*v0039.JobResultEntry{{JobID: jobID, Error: "job not found", RC: int64(backend.RCError)}}, "", backend.RCError
	}
	if desc.Partition != "" {
		j.Partition = desc.Partition
	}
	if desc.Name != "" {
		j.Name = desc.Name
	}
	s.lastUpdate++
	j.LastUpdate = s.lastUpdate
	return []*v0039.JobResultEntry{{JobID: jobID, RC: int64(backend.RCSuccess)}}, "", backend.RCSuccess
}

func (s *Store) SubmitJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextJobID
	s.nextJobID++
	s.lastUpdate++

	s.jobs[fmt.Sprintf("%d", id)] = &v0039.JobInfoMsg{
		JobID:      id,
		Name:       desc.Name,
		UserID:     desc.UserID,
		Partition:  desc.Partition,
		JobState:   "PENDING",
		LastUpdate: s.lastUpdate,
	}
	return &v0039.JobSubmitResp{JobID: id}, backend.RCSuccess
}

func (s *Store) AllocateJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, backend.RC) {
	resp, rc := s.SubmitJob(ctx, desc)
	if rc != backend.RCSuccess {
		return resp, rc
	}
	s.mu.Lock()
	if j, ok := s.jobs[fmt.Sprintf("%d", resp.JobID)]; ok {
		j.JobState = "RUNNING"
	}
	s.mu.Unlock()
	return resp, rc
}

func (s *Store) LoadNodes(ctx context.Context, flags int64) ([]*v0039.NodeInfoMsg, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*v0039.NodeInfoMsg, 0, len(s.nodes))
	for _, n := range s.nodes {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, backend.RCSuccess
}

func (s *Store) LoadNodeSingle(ctx context.Context, name string) (*v0039.NodeInfoMsg, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return nil, backend.RCError
	}
	cp := *n
	return &cp, backend.RCSuccess
}

func (s *Store) UpdateNode(ctx context.Context, msg *v0039.UpdateNodeMsg) backend.RC {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[msg.NodeNames]
	if !ok {
		n = &v0039.NodeInfoMsg{Name: msg.NodeNames}
		s.nodes[msg.NodeNames] = n
	}
	if msg.State != "" {
		n.State = msg.State
	}
	return backend.RCSuccess
}

func (s *Store) DeleteNode(ctx context.Context, name string) backend.RC {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[name]; !ok {
		return backend.RCError
	}
	delete(s.nodes, name)
	return backend.RCSuccess
}

func (s *Store) LoadPartitions(ctx context.Context) ([]*v0039.PartitionInfoMsg, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*v0039.PartitionInfoMsg, 0, len(s.partitions))
	for _, p := range s.partitions {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, backend.RCSuccess
}

func (s *Store) LoadReservations(ctx context.Context) ([]*v0039.ReservationInfoMsg, backend.RC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*v0039.ReservationInfoMsg, 0, len(s.reservations))
	for _, r := range s.reservations {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, backend.RCSuccess
}
