// Package v0039 is the concrete data-parser plugin for API revision
// "v0.0.39": it binds the wire data tree to/from the Go record shapes
// in types.go for every TypeTag this revision supports.
package v0039

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"slurmrestd/internal/dataparser"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/tree"
)

// structValidator enforces the `validate` struct tags on the bindable
// request records below (JobDescMsg, UpdateNodeMsg), the same
// go-playground/validator call internal/config makes over its own
// settings struct.
var structValidator = validator.New()

func validateRecord(rec any, parentPath string, env *envelope.Envelope) envelope.Code {
	if err := structValidator.Struct(rec); err != nil {
		return env.RespError(envelope.CodeDataFieldInvalid, "PARSE", "%s: %v", parentPath, err)
	}
	return envelope.CodeNone
}

func init() {
	dataparser.Registry().Register(New())

	dataparser.RegisterLifecycle(TagJobDescMsg, func() any { return &JobDescMsg{} }, nil)
	dataparser.RegisterLifecycle(TagKillJobsMsg, func() any { return &KillJobsMsg{} }, nil)
	dataparser.RegisterLifecycle(TagUpdateNodeMsg, func() any { return &UpdateNodeMsg{} }, nil)
	dataparser.RegisterLifecycle(TagAccountRec, func() any { return &AccountRec{} }, nil)
	dataparser.RegisterLifecycle(TagAssociationRec, func() any { return &AssociationRec{} }, nil)
	dataparser.RegisterLifecycle(TagQOSRec, func() any { return &QOSRec{} }, nil)
	dataparser.RegisterLifecycle(TagUserRec, func() any { return &UserRec{} }, nil)
	dataparser.RegisterLifecycle(TagWckeyRec, func() any { return &WckeyRec{} }, nil)
	dataparser.RegisterLifecycle(TagTresRec, func() any { return &TresRec{} }, nil)
	dataparser.RegisterLifecycle(TagClusterRec, func() any { return &ClusterRec{} }, nil)
}

// Parser is the v0.0.39 dataparser.Parser implementation.
type Parser struct {
	mu         sync.RWMutex
	attributes map[string]any
}

// New constructs an unconfigured v0.0.39 parser. ASSIGN wires in
// per-connection state afterward.
func New() *Parser {
	return &Parser{attributes: make(map[string]any)}
}

func (p *Parser) Name() string { return "v0.0.39" }

func (p *Parser) Assign(attribute string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attributes[attribute] = value
}

func (p *Parser) attribute(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.attributes[name]
	return v, ok
}

func (p *Parser) Parse(tag dataparser.TypeTag, out any, node *tree.Value, parentPath string, env *envelope.Envelope) envelope.Code {
	if node == nil || node.Kind() != tree.KindDict {
		return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: expected object", parentPath)
	}

	switch tag {
	case TagJobDescMsg:
		rec, ok := out.(*JobDescMsg)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: JOB_DESC_MSG target mismatch", parentPath)
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "script", &rec.Script, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "partition", &rec.Partition, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "min_nodes", &rec.MinNodes, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "user_id", &rec.UserID, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "group_id", &rec.GroupID, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return validateRecord(rec, parentPath, env)

	case TagKillJobsMsg:
		rec, ok := out.(*KillJobsMsg)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: KILL_JOBS_MSG target mismatch", parentPath)
		}
		if c := bindStringList(node, "job_id", &rec.JobIDs, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "signal", &rec.Signal, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "flags", &rec.Flags, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "user_name", &rec.UserName, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagUpdateNodeMsg:
		rec, ok := out.(*UpdateNodeMsg)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: UPDATE_NODE_MSG target mismatch", parentPath)
		}
		if _, hasNames := node.DictKeyGet("node_names"); hasNames {
			env.RespWarn("PARSE", "%s: node_names in body ignored, path name is authoritative", parentPath)
		}
		if c := bindString(node, "state", &rec.State, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "reason", &rec.Reason, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return validateRecord(rec, parentPath, env)

	case TagAccountRec:
		rec, ok := out.(*AccountRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: ACCOUNT_REC target mismatch", parentPath)
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "description", &rec.Description, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "organization", &rec.Organization, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindStringList(node, "coordinators", &rec.Coordinators, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagAssociationRec:
		rec, ok := out.(*AssociationRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: ASSOCIATION_REC target mismatch", parentPath)
		}
		if c := bindInt64(node, "id", &rec.ID, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "account", &rec.Account, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "cluster", &rec.Cluster, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "user", &rec.User, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "partition", &rec.Partition, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "tres", &rec.TresStr, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagQOSRec:
		rec, ok := out.(*QOSRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: QOS_REC target mismatch", parentPath)
		}
		if c := bindInt64(node, "id", &rec.ID, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindStringList(node, "preempt_list", &rec.PreemptList, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagUserRec:
		rec, ok := out.(*UserRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: USER_REC target mismatch", parentPath)
		}
		if c := bindString(node, "old_name", &rec.OldName, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "admin_level", &rec.AdminLevel, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "default_account", &rec.DefaultAcct, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "default_wckey", &rec.DefaultWckey, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindStringList(node, "wckeys", &rec.WckeyList, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if _, hasAssoc := node.DictKeyGet("associations"); hasAssoc {
			env.RespWarn("PARSE", "%s: associations ignored, set via the associations endpoint", parentPath)
		}
		if _, hasCoord := node.DictKeyGet("coordinators"); hasCoord {
			env.RespWarn("PARSE", "%s: coordinators ignored, set via the accounts endpoint", parentPath)
		}
		return envelope.CodeNone

	case TagWckeyRec:
		rec, ok := out.(*WckeyRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: WCKEY_REC target mismatch", parentPath)
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "cluster", &rec.Cluster, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "user", &rec.User, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagTresRec:
		rec, ok := out.(*TresRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: TRES_REC target mismatch", parentPath)
		}
		if c := bindString(node, "type", &rec.Type, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindInt64(node, "count", &rec.Count, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	case TagClusterRec:
		rec, ok := out.(*ClusterRec)
		if !ok {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: CLUSTER_REC target mismatch", parentPath)
		}
		if c := bindString(node, "name", &rec.Name, parentPath, env); c != envelope.CodeNone {
			return c
		}
		if c := bindString(node, "nodes", &rec.Nodes, parentPath, env); c != envelope.CodeNone {
			return c
		}
		return envelope.CodeNone

	default:
		return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE", "%s: unhandled tag %s", parentPath, tag)
	}
}

func (p *Parser) Dump(tag dataparser.TypeTag, record any, env *envelope.Envelope) *tree.Value {
	switch tag {
	case TagJobInfoMsg:
		rec := record.(*JobInfoMsg)
		d := tree.NewDict()
		dumpField(d, "job_id", tree.NewInt64(rec.JobID))
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "user_id", tree.NewInt64(rec.UserID))
		dumpField(d, "partition", tree.NewString(rec.Partition))
		dumpField(d, "job_state", tree.NewString(rec.JobState))
		dumpField(d, "last_update", tree.NewInt64(rec.LastUpdate))
		dumpField(d, "last_backfill", tree.NewInt64(rec.LastBackfill))
		return d

	case TagJobSubmitResp:
		rec := record.(*JobSubmitResp)
		d := tree.NewDict()
		dumpField(d, "job_id", tree.NewInt64(rec.JobID))
		dumpField(d, "step_id", tree.NewString(rec.StepID))
		dumpField(d, "job_submit_user_msg", tree.NewString(rec.JobSubmitMsg))
		return d

	case TagNodeInfoMsg:
		rec := record.(*NodeInfoMsg)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "state", tree.NewString(rec.State))
		dumpField(d, "partitions", dumpStringList(rec.Partitions))
		dumpField(d, "cpus", tree.NewInt64(rec.CPUs))
		dumpField(d, "real_memory", tree.NewInt64(rec.RealMemory))
		return d

	case TagPartitionInfoMsg:
		rec := record.(*PartitionInfoMsg)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "nodes", tree.NewString(rec.Nodes))
		dumpField(d, "state", tree.NewString(rec.State))
		dumpField(d, "max_time", tree.NewInt64(rec.MaxTime))
		return d

	case TagReservationInfoMsg:
		rec := record.(*ReservationInfoMsg)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "nodes", tree.NewString(rec.Nodes))
		dumpField(d, "start_time", tree.NewInt64(rec.StartTime))
		dumpField(d, "end_time", tree.NewInt64(rec.EndTime))
		return d

	case TagAccountRec:
		rec := record.(*AccountRec)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "description", tree.NewString(rec.Description))
		dumpField(d, "organization", tree.NewString(rec.Organization))
		dumpField(d, "coordinators", dumpStringList(rec.Coordinators))
		return d

	case TagAssociationRec:
		rec := record.(*AssociationRec)
		d := tree.NewDict()
		dumpField(d, "id", tree.NewInt64(rec.ID))
		dumpField(d, "account", tree.NewString(rec.Account))
		dumpField(d, "cluster", tree.NewString(rec.Cluster))
		dumpField(d, "user", tree.NewString(rec.User))
		dumpField(d, "partition", tree.NewString(rec.Partition))
		dumpField(d, "tres", tree.NewString(rec.TresStr))
		return d

	case TagQOSRec:
		rec := record.(*QOSRec)
		d := tree.NewDict()
		dumpField(d, "id", tree.NewInt64(rec.ID))
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "preempt_list", dumpStringList(rec.PreemptList))
		return d

	case TagUserRec:
		rec := record.(*UserRec)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "admin_level", tree.NewString(rec.AdminLevel))
		dumpField(d, "default_account", tree.NewString(rec.DefaultAcct))
		dumpField(d, "default_wckey", tree.NewString(rec.DefaultWckey))
		dumpField(d, "wckeys", dumpStringList(rec.WckeyList))
		return d

	case TagWckeyRec:
		rec := record.(*WckeyRec)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "cluster", tree.NewString(rec.Cluster))
		dumpField(d, "user", tree.NewString(rec.User))
		return d

	case TagTresRec:
		rec := record.(*TresRec)
		d := tree.NewDict()
		dumpField(d, "type", tree.NewString(rec.Type))
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "count", tree.NewInt64(rec.Count))
		return d

	case TagClusterRec:
		rec := record.(*ClusterRec)
		d := tree.NewDict()
		dumpField(d, "name", tree.NewString(rec.Name))
		dumpField(d, "nodes", tree.NewString(rec.Nodes))
		return d

	case TagPingResp:
		rec := record.(*PingResp)
		d := tree.NewDict()
		dumpField(d, "hostname", tree.NewString(rec.Pinged))
		dumpField(d, "pinged", tree.NewString(rec.Pinged2))
		dumpField(d, "mode", tree.NewString(rec.Mode))
		dumpField(d, "status", tree.NewInt64(rec.Status))
		return d

	case TagDiagResp:
		rec := record.(*DiagResp)
		d := tree.NewDict()
		dumpField(d, "server_thread_count", tree.NewInt64(rec.ServerThreadCount))
		dumpField(d, "jobs_submitted", tree.NewInt64(rec.JobsSubmitted))
		dumpField(d, "jobs_started", tree.NewInt64(rec.JobsStarted))
		return d

	case TagJobResultEntry:
		rec := record.(*JobResultEntry)
		d := tree.NewDict()
		dumpField(d, "job_id", tree.NewString(rec.JobID))
		dumpField(d, "error", tree.NewString(rec.Error))
		dumpField(d, "error_code", tree.NewInt64(rec.RC))
		return d

	case TagLicensesResp:
		rec := record.(*LicensesResp)
		elems := make([]*tree.Value, 0, len(rec.Licenses))
		for _, l := range rec.Licenses {
			ld := tree.NewDict()
			dumpField(ld, "name", tree.NewString(l.Name))
			dumpField(ld, "total", tree.NewInt64(l.Total))
			dumpField(ld, "used", tree.NewInt64(l.Used))
			elems = append(elems, ld)
		}
		d := tree.NewDict()
		dumpField(d, "licenses", tree.List(elems...))
		return d

	case TagSharesResp:
		rec := record.(*SharesResp)
		elems := make([]*tree.Value, 0, len(rec.Shares))
		for _, sh := range rec.Shares {
			sd := tree.NewDict()
			dumpField(sd, "account", tree.NewString(sh.Account))
			dumpField(sd, "user", tree.NewString(sh.User))
			dumpField(sd, "shares", tree.NewInt64(sh.Shares))
			elems = append(elems, sd)
		}
		d := tree.NewDict()
		dumpField(d, "shares", tree.List(elems...))
		return d

	case TagResp:
		return tree.NewDict()

	default:
		env.RespError(envelope.CodeDataExpectedTypeMismatch, "DUMP", "unhandled tag %s", tag)
		return tree.New()
	}
}

func (p *Parser) Specify(specTree *tree.Value) {
	section, err := specTree.DictKeySet("x-v0039-dataparser")
	if err != nil {
		return
	}
	*section = *tree.Dict(tree.S("revision", p.Name()))
}
