package operations

import (
	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/config", configHandler, router.GET, router.POST)
}

func configHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		dumpConfig(ctxt)
	case router.POST:
		loadConfig(ctxt)
	}
}

// dumpConfig implements the config fan-out GET: clusters, TRES,
// accounts, users, QOS, wckeys and associations are each listed
// unfiltered and assembled into one dict (spec.md §4.I "Config dump").
func dumpConfig(ctxt *restapi.Ctxt) {
	clusters, rc := ctxt.Backend.ListClusters(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(clusters), "config/clusters", false); code != envelope.CodeNone {
		return
	}
	tres, rc := ctxt.Backend.ListTres(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(tres), "config/tres", false); code != envelope.CodeNone {
		return
	}
	accounts, rc := ctxt.Backend.ListAccounts(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(accounts), "config/accounts", false); code != envelope.CodeNone {
		return
	}
	users, rc := ctxt.Backend.ListUsers(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(users), "config/users", false); code != envelope.CodeNone {
		return
	}
	qos, rc := ctxt.Backend.ListQOS(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(qos), "config/qos", false); code != envelope.CodeNone {
		return
	}
	wckeys, rc := ctxt.Backend.ListWckeys(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(wckeys), "config/wckeys", false); code != envelope.CodeNone {
		return
	}
	associations, rc := ctxt.Backend.ListAssociations(ctxt.Context, nil)
	if code := ctxt.DBQueryList(rc, len(associations), "config/associations", false); code != envelope.CodeNone {
		return
	}

	ctxt.SetPayload("config", tree.Dict(
		tree.V("clusters", dumpList(ctxt, v0039.TagClusterRec, clusters)),
		tree.V("tres", dumpList(ctxt, v0039.TagTresRec, tres)),
		tree.V("accounts", dumpList(ctxt, v0039.TagAccountRec, accounts)),
		tree.V("users", dumpList(ctxt, v0039.TagUserRec, users)),
		tree.V("qos", dumpList(ctxt, v0039.TagQOSRec, qos)),
		tree.V("wckeys", dumpList(ctxt, v0039.TagWckeyRec, wckeys)),
		tree.V("associations", dumpList(ctxt, v0039.TagAssociationRec, associations)),
	))
}

func dumpList[T any](ctxt *restapi.Ctxt, tag dataparser.TypeTag, recs []T) *tree.Value {
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(tag, r, ctxt.Env))
	}
	return tree.List(elems...)
}

// loadConfig implements the config fan-out POST: the seven sections are
// applied in the same order they're dumped, each one parsed and pushed
// through the same add/modify RPCs its own collection endpoint uses.
// Everything commits once, after the last successful step (spec.md
// §4.I, §5 "Commit discipline").
func loadConfig(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "config", "request body is required")
		return
	}

	if node, ok := ctxt.Body.DictKeyGet("clusters"); ok {
		if !loadClusters(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("tres"); ok {
		if !loadTres(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("accounts"); ok {
		if !loadAccounts(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("users"); ok {
		if !loadUsers(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("qos"); ok {
		if !loadQOS(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("wckeys"); ok {
		if !loadWckeys(ctxt, node) {
			return
		}
	}
	if node, ok := ctxt.Body.DictKeyGet("associations"); ok {
		if !loadAssociations(ctxt, node) {
			return
		}
	}

	if code := ctxt.DBQueryCommit(); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

func loadClusters(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/clusters", "clusters must be a list")
		return false
	}
	recs := make([]*v0039.ClusterRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.ClusterRec{}
		if code := ctxt.Parser.Parse(v0039.TagClusterRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return true
	}
	return ctxt.DBQueryRC(ctxt.Backend.AddClusters(ctxt.Context, recs), "config/clusters") == envelope.CodeNone
}

func loadTres(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/tres", "tres must be a list")
		return false
	}
	recs := make([]*v0039.TresRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.TresRec{}
		if code := ctxt.Parser.Parse(v0039.TagTresRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		if !tresUpdateEnabled {
			existing, rc := ctxt.Backend.ListTres(ctxt.Context, map[string]string{"type": rec.Type, "name": rec.Name})
			if rc == backend.RCSuccess && len(existing) > 0 {
				ctxt.RespError(envelope.CodeNotSupported, "config/tres", "updating TRES %s/%s requires a developer build", rec.Type, rec.Name)
				return false
			}
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return true
	}
	return ctxt.DBQueryRC(ctxt.Backend.AddTres(ctxt.Context, recs), "config/tres") == envelope.CodeNone
}

func loadAccounts(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/accounts", "accounts must be a list")
		return false
	}
	for _, node := range nodes {
		rec := &v0039.AccountRec{}
		if code := ctxt.Parser.Parse(v0039.TagAccountRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		existing, rc := ctxt.Backend.ListAccounts(ctxt.Context, map[string]string{"name": rec.Name})
		if rc != backend.RCSuccess && rc != backend.RCNoChangeInData {
			ctxt.RespError(envelope.CodeDBConnection, "config/accounts", "list_accounts failed (rc=%d)", rc)
			return false
		}
		if len(existing) == 0 {
			if ctxt.DBQueryRC(ctxt.Backend.AddAccounts(ctxt.Context, []*v0039.AccountRec{rec}), "config/accounts") != envelope.CodeNone {
				return false
			}
			continue
		}
		add, remove := reconcileCoordinators(existing[0].Coordinators, rec.Coordinators)
		if len(add) > 0 && ctxt.DBQueryRC(ctxt.Backend.CoordAdd(ctxt.Context, rec.Name, add), "config/accounts") != envelope.CodeNone {
			return false
		}
		if len(remove) > 0 && ctxt.DBQueryRC(ctxt.Backend.CoordRemove(ctxt.Context, rec.Name, remove), "config/accounts") != envelope.CodeNone {
			return false
		}
		_, rc = ctxt.Backend.ModifyAccounts(ctxt.Context, map[string]string{"name": rec.Name}, rec)
		if ctxt.DBQueryRC(rc, "config/accounts") != envelope.CodeNone {
			return false
		}
	}
	return true
}

func loadUsers(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/users", "users must be a list")
		return false
	}
	for _, node := range nodes {
		rec := &v0039.UserRec{}
		if code := ctxt.Parser.Parse(v0039.TagUserRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		lookupName := rec.Name
		if rec.OldName != "" {
			lookupName = rec.OldName
		}
		_, rc := ctxt.Backend.GetUser(ctxt.Context, lookupName)
		if rc != backend.RCSuccess {
			if ctxt.DBQueryRC(ctxt.Backend.AddUsers(ctxt.Context, []*v0039.UserRec{rec}), "config/users") != envelope.CodeNone {
				return false
			}
			continue
		}
		modified, rc := ctxt.Backend.ModifyUser(ctxt.Context, rec)
		if ctxt.DBModify(rc, len(modified), "config/users") != envelope.CodeNone {
			return false
		}
	}
	return true
}

func loadQOS(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/qos", "qos must be a list")
		return false
	}
	for _, node := range nodes {
		rec := &v0039.QOSRec{}
		if code := ctxt.Parser.Parse(v0039.TagQOSRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		var existing *v0039.QOSRec
		var rc backend.RC
		if rec.ID != 0 {
			existing, rc = ctxt.Backend.GetQOSByID(ctxt.Context, rec.ID)
			if rc != backend.RCSuccess {
				ctxt.RespError(envelope.CodeDataPathNotFound, "config/qos", "unknown QOS id %d", rec.ID)
				return false
			}
		} else if rec.Name != "" {
			existing, rc = ctxt.Backend.GetQOSByName(ctxt.Context, rec.Name)
			if rc != backend.RCSuccess {
				existing = nil
			}
		}
		if existing != nil && len(existing.PreemptList) > 0 && len(rec.PreemptList) == 0 {
			if _, hasKey := node.DictKeyGet("preempt_list"); hasKey {
				rec.PreemptList = preemptListClearSentinel
			}
		}
		if existing == nil {
			if ctxt.DBQueryRC(ctxt.Backend.AddQOS(ctxt.Context, rec), "config/qos") != envelope.CodeNone {
				return false
			}
			continue
		}
		rec.ID = existing.ID
		modified, rc := ctxt.Backend.ModifyQOS(ctxt.Context, rec)
		if ctxt.DBModify(rc, len(modified), "config/qos") != envelope.CodeNone {
			return false
		}
	}
	return true
}

func loadWckeys(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/wckeys", "wckeys must be a list")
		return false
	}
	recs := make([]*v0039.WckeyRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.WckeyRec{}
		if code := ctxt.Parser.Parse(v0039.TagWckeyRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return true
	}
	return ctxt.DBQueryRC(ctxt.Backend.AddWckeys(ctxt.Context, recs), "config/wckeys") == envelope.CodeNone
}

func loadAssociations(ctxt *restapi.Ctxt, list *tree.Value) bool {
	nodes, lerr := list.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "config/associations", "associations must be a list")
		return false
	}
	for _, node := range nodes {
		rec := &v0039.AssociationRec{}
		if code := ctxt.Parser.Parse(v0039.TagAssociationRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return false
		}
		if rec.ID == 0 {
			if ctxt.DBQueryRC(ctxt.Backend.AddAssociations(ctxt.Context, []*v0039.AssociationRec{rec}), "config/associations") != envelope.CodeNone {
				return false
			}
			continue
		}
		existing, rc := ctxt.Backend.GetAssociation(ctxt.Context, rec.ID)
		if rc != backend.RCSuccess {
			ctxt.RespError(envelope.CodeDataPathNotFound, "config/associations", "unknown association id %d", rec.ID)
			return false
		}
		diff := &v0039.AssociationRec{
			ID:        rec.ID,
			Account:   rec.Account,
			Cluster:   rec.Cluster,
			User:      rec.User,
			Partition: rec.Partition,
			TresStr:   tresDiff(existing.TresStr, rec.TresStr),
		}
		modified, rc := ctxt.Backend.ModifyAssociations(ctxt.Context, diff)
		if ctxt.DBModify(rc, len(modified), "config/associations") != envelope.CodeNone {
			return false
		}
	}
	return true
}
