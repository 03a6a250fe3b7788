package v0039

// JobDescMsg is the bindable shape of a job submission/update request.
// Struct tags are enforced by internal/dataparser/v0039's Parse via
// go-playground/validator, the same struct-tag mechanism
// internal/config uses for its own settings.
type JobDescMsg struct {
	Name         string `validate:"omitempty,max=256"`
	Script       string `validate:"omitempty"`
	Partition    string `validate:"omitempty"`
	MinNodes     int64  `validate:"gte=0"`
	UserID       int64  `validate:"gte=0"`
	GroupID      int64  `validate:"gte=0"`
	NotifyPort   int64  `validate:"gte=0"`
	ArrayTaskID  string `validate:"omitempty"`
	HetJobOffset int64  `validate:"gte=0"`
	Environment  map[string]string
}

// JobInfoMsg is one job record in a load_jobs() result list.
type JobInfoMsg struct {
	JobID        int64
	Name         string
	UserID       int64
	Partition    string
	JobState     string
	LastUpdate   int64
	LastBackfill int64
}

// KillJobsMsg is the body of DELETE /jobs and DELETE /job/{job_id}.
type KillJobsMsg struct {
	JobIDs   []string
	Signal   int64
	Flags    int64
	UserName string
}

// JobResultEntry is one element of a kill/update per-job result list.
type JobResultEntry struct {
	JobID   string
	Error   string
	RC      int64
}

// JobSubmitResp is the response to POST /job/submit.
type JobSubmitResp struct {
	JobID        int64
	StepID       string
	JobSubmitMsg string
}

// UpdateNodeMsg is the bindable shape of POST /node/{node_name}.
type UpdateNodeMsg struct {
	NodeNames string
	State     string `validate:"omitempty,oneof=DOWN DRAIN FAIL FUTURE RESUME UNDRAIN POWER_DOWN POWER_UP"`
	Reason    string `validate:"omitempty,max=512"`
}

// NodeInfoMsg is one node record, cross-referenced with the partitions
// it belongs to by populate_node_partitions-equivalent logic in
// internal/operations/nodes.go.
type NodeInfoMsg struct {
	Name       string
	State      string
	Partitions []string
	CPUs       int64
	RealMemory int64
}

// PartitionInfoMsg is one partition record.
type PartitionInfoMsg struct {
	Name      string
	Nodes     string
	State     string
	MaxTime   int64
}

// ReservationInfoMsg is one reservation record.
type ReservationInfoMsg struct {
	Name      string
	Nodes     string
	StartTime int64
	EndTime   int64
}

// AccountRec is one slurmdb account record.
type AccountRec struct {
	Name         string
	Description  string
	Organization string
	Coordinators []string
}

// AssociationRec is one slurmdb association record, including the
// raw TRES-string used for diff computation on modify
// (internal/operations/associations.go).
type AssociationRec struct {
	ID       int64
	Account  string
	Cluster  string
	User     string
	Partition string
	TresStr  string
}

// QOSRec is one slurmdb QOS record.
type QOSRec struct {
	ID          int64
	Name        string
	PreemptList []string
}

// UserRec is one slurmdb user record.
type UserRec struct {
	OldName       string
	Name          string
	AdminLevel    string
	DefaultAcct   string
	DefaultWckey  string
	WckeyList     []string
	AssocList     []string
	CoordAccounts []string
}

// WckeyRec is one slurmdb wckey record.
type WckeyRec struct {
	Name    string
	Cluster string
	User    string
}

// TresRec is one slurmdb TRES record.
type TresRec struct {
	Type  string
	Name  string
	Count int64
}

// ClusterRec is one slurmdb cluster record.
type ClusterRec struct {
	Name string
	Nodes string
}

// PingResp reports controller reachability.
type PingResp struct {
	Pinged  string
	Pinged2 string
	Mode    string
	Status  int64
}

// DiagResp carries controller statistics counters.
type DiagResp struct {
	ServerThreadCount int64
	JobsSubmitted     int64
	JobsStarted       int64
}

// Resp is the empty-payload envelope used by pure side-effect
// operations (node delete, reconfigure).
type Resp struct{}

// LicenseRec is one license pool's usage counters.
type LicenseRec struct {
	Name  string
	Total int64
	Used  int64
}

// LicensesResp is the response to GET /licenses.
type LicensesResp struct {
	Licenses []LicenseRec
}

// ShareRec is one account/user fair-share entry.
type ShareRec struct {
	Account string
	User    string
	Shares  int64
}

// SharesResp is the response to GET /shares.
type SharesResp struct {
	Shares []ShareRec
}
