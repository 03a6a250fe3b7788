// Package backend declares the narrow RPC surface the operation
// handlers call into. The controller (ctld) and accounting database
// (dbd) themselves are out of scope (spec.md §1); this interface is
// the "external collaborator" boundary the core sees: RPC functions
// returning lists/records and error codes, nothing about wire protocol
// or storage.
package backend

import (
	"context"

	"slurmrestd/internal/dataparser/v0039"
)

// RC is a raw, unmapped return code from an RPC, distinct from the
// envelope.Code the handler translates it into.
type RC int

const (
	RCSuccess         RC = 0
	RCNoChangeInData  RC = 1
	RCAlreadyDone     RC = 2
	RCError           RC = 3
)

// Client is implemented once per backend (the reference in-memory +
// Postgres store in internal/backend/refstore, or any real ctld/dbd
// bridge a deployment swaps in). Every method is a single RPC: no
// method implies a transaction boundary on its own except the Commit
// pair, matching spec.md §4.H's commit-discipline note.
type Client interface {
	// Jobs
	LoadJobs(ctx context.Context, updateTime int64, flags int64) ([]*v0039.JobInfoMsg, int64, RC)
	LoadJob(ctx context.Context, jobID string) (*v0039.JobInfoMsg, RC)
	KillJobs(ctx context.Context, req *v0039.KillJobsMsg) ([]*v0039.JobResultEntry, RC)
	UpdateJob(ctx context.Context, jobID string, desc *v0039.JobDescMsg) ([]*v0039.JobResultEntry, string, RC)
	SubmitJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, RC)
	AllocateJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, RC)

	// Nodes
	LoadNodes(ctx context.Context, flags int64) ([]*v0039.NodeInfoMsg, RC)
	LoadNodeSingle(ctx context.Context, name string) (*v0039.NodeInfoMsg, RC)
	UpdateNode(ctx context.Context, msg *v0039.UpdateNodeMsg) RC
	DeleteNode(ctx context.Context, name string) RC

	// Partitions / reservations (read-only)
	LoadPartitions(ctx context.Context) ([]*v0039.PartitionInfoMsg, RC)
	LoadReservations(ctx context.Context) ([]*v0039.ReservationInfoMsg, RC)

	// Accounts (dbd)
	ListAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, RC)
	AddAccounts(ctx context.Context, recs []*v0039.AccountRec) RC
	ModifyAccounts(ctx context.Context, cond map[string]string, update *v0039.AccountRec) ([]*v0039.AccountRec, RC)
	RemoveAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, RC)
	CoordAdd(ctx context.Context, account string, names []string) RC
	CoordRemove(ctx context.Context, account string, names []string) RC

	// Associations (dbd)
	ListAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, RC)
	GetAssociation(ctx context.Context, id int64) (*v0039.AssociationRec, RC)
	AddAssociations(ctx context.Context, recs []*v0039.AssociationRec) RC
	ModifyAssociations(ctx context.Context, diff *v0039.AssociationRec) ([]*v0039.AssociationRec, RC)
	RemoveAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, RC)

	// QOS (dbd)
	ListQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, RC)
	GetQOSByID(ctx context.Context, id int64) (*v0039.QOSRec, RC)
	GetQOSByName(ctx context.Context, name string) (*v0039.QOSRec, RC)
	AddQOS(ctx context.Context, rec *v0039.QOSRec) RC
	ModifyQOS(ctx context.Context, rec *v0039.QOSRec) ([]*v0039.QOSRec, RC)
	RemoveQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, RC)

	// Users (dbd)
	ListUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, RC)
	GetUser(ctx context.Context, name string) (*v0039.UserRec, RC)
	AddUsers(ctx context.Context, recs []*v0039.UserRec) RC
	ModifyUser(ctx context.Context, rec *v0039.UserRec) ([]*v0039.UserRec, RC)
	RemoveUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, RC)

	// Wckeys (dbd)
	ListWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, RC)
	AddWckeys(ctx context.Context, recs []*v0039.WckeyRec) RC
	RemoveWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, RC)

	// TRES (dbd)
	ListTres(ctx context.Context, cond map[string]string) ([]*v0039.TresRec, RC)
	AddTres(ctx context.Context, recs []*v0039.TresRec) RC

	// Clusters (dbd)
	ListClusters(ctx context.Context, cond map[string]string) ([]*v0039.ClusterRec, RC)
	AddClusters(ctx context.Context, recs []*v0039.ClusterRec) RC

	// Diag / ping / licenses / shares
	Ping(ctx context.Context) (*v0039.PingResp, RC)
	Diag(ctx context.Context) (*v0039.DiagResp, RC)
	Licenses(ctx context.Context) (*v0039.LicensesResp, RC)
	Shares(ctx context.Context) (*v0039.SharesResp, RC)

	// Commit/rollback the mutations accumulated on this connection.
	// ctxt.commit() calls Commit only when the request ends with result
	// code 0 (spec.md §4.H step 6); otherwise the backend auto-rolls
	// back on disconnect and Rollback is never called explicitly by the
	// core.
	Commit(ctx context.Context) RC
	Rollback(ctx context.Context) RC

	Close() error
}
