package operations

import (
	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

// preemptListClearSentinel is the single empty-string element the
// backend requires to distinguish "clear the preempt list" from "no
// change", per spec.md §4.I's QOS contract.
var preemptListClearSentinel = []string{""}

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/qos", qosCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurmdb/{data_parser}/qos/{qos_name}", qosSingleHandler, router.GET, router.DELETE)
}

func qosCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listQOS(ctxt, nil)
	case router.POST:
		upsertQOS(ctxt)
	}
}

func qosSingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "qos_name")
	cond := map[string]string{"name": name}
	switch ctxt.Method {
	case router.GET:
		listQOS(ctxt, cond)
	case router.DELETE:
		removeQOS(ctxt, cond)
	}
}

func listQOS(ctxt *restapi.Ctxt, cond map[string]string) {
	if cond == nil {
		cond = condFromQuery(ctxt)
	}
	recs, rc := ctxt.Backend.ListQOS(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_qos", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagQOSRec, r, ctxt.Env))
	}
	ctxt.SetPayload("qos", tree.List(elems...))
}

// upsertQOS implements POST /qos: a record carrying an id requires an
// existing row (error if not found); a record with only a name is
// created if absent, modified if present. Clearing a previously
// populated preempt list sends the single-element sentinel rather than
// an empty list, so the backend can tell "clear" from "no change".
func upsertQOS(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "qos", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "qos", "body must be a list of QOS records")
		return
	}

	for _, node := range nodes {
		rec := &v0039.QOSRec{}
		if code := ctxt.Parser.Parse(v0039.TagQOSRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}

		var existing *v0039.QOSRec
		var rc backend.RC
		if rec.ID != 0 {
			existing, rc = ctxt.Backend.GetQOSByID(ctxt.Context, rec.ID)
			if rc != backend.RCSuccess {
				ctxt.RespError(envelope.CodeDataPathNotFound, "qos", "unknown QOS id %d", rec.ID)
				return
			}
		} else {
			if rec.Name == "" {
				ctxt.RespError(envelope.CodeRestInvalidQuery, "qos", "QOS record requires an id or a name")
				return
			}
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
			if code := ctxt.DBQueryRC(ctxt.Backend.AddQOS(ctxt.Context, rec), "add_qos"); code != envelope.CodeNone {
				return
			}
			continue
		}

		rec.ID = existing.ID
		modified, rc := ctxt.Backend.ModifyQOS(ctxt.Context, rec)
		if code := ctxt.DBModify(rc, len(modified), "modify_qos"); code != envelope.CodeNone {
			return
		}
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

func removeQOS(ctxt *restapi.Ctxt, cond map[string]string) {
	recs, rc := ctxt.Backend.RemoveQOS(ctxt.Context, cond)
	if code := ctxt.DBModify(rc, len(recs), "remove_qos"); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagQOSRec, r, ctxt.Env))
	}
	ctxt.SetPayload("removed_qos", tree.List(elems...))
}
