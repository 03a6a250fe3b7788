package restapi

import (
	"context"
	"testing"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
)

func TestDBQueryListNoChangeWarns(t *testing.T) {
	c := &Ctxt{Env: envelope.New(envelope.Meta{})}
	code := c.DBQueryList(backend.RCNoChangeInData, 0, "load_jobs", true)
	if code != envelope.CodeNone {
		t.Fatalf("code = %v, want CodeNone", code)
	}
	if len(c.Env.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", c.Env.Warnings)
	}
	if c.Env.ResultCode() != envelope.CodeNone {
		t.Fatalf("result code = %v, want unaffected", c.Env.ResultCode())
	}
}

func TestDBQueryListErrorSetsCode(t *testing.T) {
	c := &Ctxt{Env: envelope.New(envelope.Meta{})}
	code := c.DBQueryList(backend.RCError, 0, "load_jobs", false)
	if code != envelope.CodeDBConnection {
		t.Fatalf("code = %v", code)
	}
	if c.Env.ResultCode() != envelope.CodeDBConnection {
		t.Fatalf("result code = %v", c.Env.ResultCode())
	}
}

func TestDBQueryRCFlagsCommit(t *testing.T) {
	c := &Ctxt{Env: envelope.New(envelope.Meta{})}
	if code := c.DBQueryRC(backend.RCSuccess, "add_accounts"); code != envelope.CodeNone {
		t.Fatalf("code = %v", code)
	}
	if !c.commit {
		t.Fatal("expected commit flag set")
	}
}

func TestDBModifyEmptySetErrors(t *testing.T) {
	c := &Ctxt{Env: envelope.New(envelope.Meta{})}
	code := c.DBModify(backend.RCSuccess, 0, "associations_modify")
	if code != envelope.CodeDataEmptyResult {
		t.Fatalf("code = %v", code)
	}
	if c.commit {
		t.Fatal("commit should not be set on empty modify result")
	}
}

func TestHTTPStatusForMapsClientAndBackendErrors(t *testing.T) {
	if s := httpStatusFor(envelope.CodeNone); s != 200 {
		t.Fatalf("ok status = %d", s)
	}
	if s := httpStatusFor(envelope.CodeDataPathNotFound); s != 404 {
		t.Fatalf("not found status = %d", s)
	}
	if s := httpStatusFor(envelope.CodeRestInvalidQuery); s != 400 {
		t.Fatalf("invalid query status = %d", s)
	}
	if s := httpStatusFor(envelope.CodeDBConnection); s != 500 {
		t.Fatalf("backend status = %d", s)
	}
}

func TestRegisterOperationIsIdempotentAcrossTags(t *testing.T) {
	called := 0
	tag1 := RegisterOperation("/test/ping-a", func(c *Ctxt) { called++ }, "GET")
	tag2 := RegisterOperation("/test/ping-a", func(c *Ctxt) { called++ }, "GET")
	if tag1 != tag2 {
		t.Fatalf("tags = %d, %d, want equal", tag1, tag2)
	}
	h, ok := lookupHandler(tag1)
	if !ok {
		t.Fatal("expected handler registered")
	}
	h(&Ctxt{Env: envelope.New(envelope.Meta{})})
	if called != 1 {
		t.Fatalf("called = %d, want 1", called)
	}
}

func TestTreeToNativeRoundTripsScalarsAndContainers(t *testing.T) {
	env := envelope.New(envelope.Meta{Plugin: envelope.PluginMeta{Type: "openapi/slurmctld"}})
	env.RespWarn("ping", "informational")
	root := env.ToTree("pings", nil)

	native, err := treeToNative(root)
	if err != nil {
		t.Fatalf("treeToNative error: %v", err)
	}
	m, ok := native.(map[string]any)
	if !ok {
		t.Fatalf("native = %T, want map", native)
	}
	if _, ok := m["meta"]; !ok {
		t.Fatal("expected meta key")
	}
	warnings, ok := m["warnings"].([]any)
	if !ok || len(warnings) != 1 {
		t.Fatalf("warnings = %v", m["warnings"])
	}
}

func TestDispatchUnregisteredPathIsDataPathNotFound(t *testing.T) {
	hc := newFakeRequestContext("GET", "/slurm/v0.0.39/does-not-exist", "")
	Dispatch(hc, &stubBackend{}, MetaTemplate{PluginType: "openapi/slurmctld"})
	if hc.status != 404 {
		t.Fatalf("status = %d, want 404", hc.status)
	}
}

// stubBackend is the minimal backend.Client used by dispatch tests that
// never reach a handler invoking real RPCs.
type stubBackend struct{}

func (stubBackend) LoadJobs(ctx context.Context, updateTime, flags int64) ([]*v0039.JobInfoMsg, int64, backend.RC) {
	return nil, 0, backend.RCSuccess
}
func (stubBackend) LoadJob(ctx context.Context, jobID string) (*v0039.JobInfoMsg, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) KillJobs(ctx context.Context, req *v0039.KillJobsMsg) ([]*v0039.JobResultEntry, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) UpdateJob(ctx context.Context, jobID string, desc *v0039.JobDescMsg) ([]*v0039.JobResultEntry, string, backend.RC) {
	return nil, "", backend.RCSuccess
}
func (stubBackend) SubmitJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) AllocateJob(ctx context.Context, desc *v0039.JobDescMsg) (*v0039.JobSubmitResp, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) LoadNodes(ctx context.Context, flags int64) ([]*v0039.NodeInfoMsg, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) LoadNodeSingle(ctx context.Context, name string) (*v0039.NodeInfoMsg, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) UpdateNode(ctx context.Context, msg *v0039.UpdateNodeMsg) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) DeleteNode(ctx context.Context, name string) backend.RC { return backend.RCSuccess }
func (stubBackend) LoadPartitions(ctx context.Context) ([]*v0039.PartitionInfoMsg, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) LoadReservations(ctx context.Context) ([]*v0039.ReservationInfoMsg, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) ListAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) AddAccounts(ctx context.Context, recs []*v0039.AccountRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) ModifyAccounts(ctx context.Context, cond map[string]string, update *v0039.AccountRec) ([]*v0039.AccountRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) RemoveAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) CoordAdd(ctx context.Context, account string, names []string) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) CoordRemove(ctx context.Context, account string, names []string) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) ListAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) GetAssociation(ctx context.Context, id int64) (*v0039.AssociationRec, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) AddAssociations(ctx context.Context, recs []*v0039.AssociationRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) ModifyAssociations(ctx context.Context, diff *v0039.AssociationRec) ([]*v0039.AssociationRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) RemoveAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) ListQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) GetQOSByID(ctx context.Context, id int64) (*v0039.QOSRec, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) GetQOSByName(ctx context.Context, name string) (*v0039.QOSRec, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) AddQOS(ctx context.Context, rec *v0039.QOSRec) backend.RC { return backend.RCSuccess }
func (stubBackend) ModifyQOS(ctx context.Context, rec *v0039.QOSRec) ([]*v0039.QOSRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) RemoveQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) ListUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) GetUser(ctx context.Context, name string) (*v0039.UserRec, backend.RC) {
	return nil, backend.RCError
}
func (stubBackend) AddUsers(ctx context.Context, recs []*v0039.UserRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) ModifyUser(ctx context.Context, rec *v0039.UserRec) ([]*v0039.UserRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) RemoveUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) ListWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) AddWckeys(ctx context.Context, recs []*v0039.WckeyRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) RemoveWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) ListTres(ctx context.Context, cond map[string]string) ([]*v0039.TresRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) AddTres(ctx context.Context, recs []*v0039.TresRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) ListClusters(ctx context.Context, cond map[string]string) ([]*v0039.ClusterRec, backend.RC) {
	return nil, backend.RCSuccess
}
func (stubBackend) AddClusters(ctx context.Context, recs []*v0039.ClusterRec) backend.RC {
	return backend.RCSuccess
}
func (stubBackend) Ping(ctx context.Context) (*v0039.PingResp, backend.RC) {
	return &v0039.PingResp{}, backend.RCSuccess
}
func (stubBackend) Diag(ctx context.Context) (*v0039.DiagResp, backend.RC) {
	return &v0039.DiagResp{}, backend.RCSuccess
}
func (stubBackend) Licenses(ctx context.Context) (*v0039.LicensesResp, backend.RC) {
	return &v0039.LicensesResp{}, backend.RCSuccess
}
func (stubBackend) Shares(ctx context.Context) (*v0039.SharesResp, backend.RC) {
	return &v0039.SharesResp{}, backend.RCSuccess
}
func (stubBackend) Commit(ctx context.Context) backend.RC   { return backend.RCSuccess }
func (stubBackend) Rollback(ctx context.Context) backend.RC { return backend.RCSuccess }
func (stubBackend) Close() error                            { return nil }

var _ backend.Client = stubBackend{}

// fakeRequestContext is a minimal in-memory httpdriver.RequestContext
// used to exercise Dispatch without a real Gin engine.
type fakeRequestContext struct {
	method  string
	path    string
	body    string
	headers map[string]string
	values  map[string]any
	status  int
	data    []byte
}

func newFakeRequestContext(method, path, body string) *fakeRequestContext {
	return &fakeRequestContext{
		method:  method,
		path:    path,
		body:    body,
		headers: make(map[string]string),
		values:  make(map[string]any),
	}
}

func (f *fakeRequestContext) Method() string { return f.method }
func (f *fakeRequestContext) Path() string   { return f.path }
func (f *fakeRequestContext) PathParam(name string) string {
	if name == "path" {
		return f.path
	}
	return ""
}
func (f *fakeRequestContext) QueryParam(name string) string { return "" }
func (f *fakeRequestContext) RawQuery() string              { return "" }
func (f *fakeRequestContext) Header(name string) string     { return f.headers[name] }
func (f *fakeRequestContext) BodyBytes() ([]byte, error)     { return []byte(f.body), nil }
func (f *fakeRequestContext) Status(code int)                { f.status = code }
func (f *fakeRequestContext) SetHeader(name, value string)   { f.headers[name] = value }
func (f *fakeRequestContext) Data(contentType string, data []byte) error {
	f.data = data
	return nil
}
func (f *fakeRequestContext) Set(key string, value any)  { f.values[key] = value }
func (f *fakeRequestContext) Get(key string) (any, bool) { v, ok := f.values[key]; return v, ok }
func (f *fakeRequestContext) Context() context.Context   { return context.Background() }
