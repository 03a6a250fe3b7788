package operations

import (
	"sort"
	"strings"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/associations", associationsHandler, router.GET, router.POST, router.DELETE)
}

func associationsHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listAssociations(ctxt)
	case router.POST:
		upsertAssociations(ctxt)
	case router.DELETE:
		removeAssociations(ctxt)
	}
}

func listAssociations(ctxt *restapi.Ctxt) {
	cond := condFromQuery(ctxt, "only_one")
	recs, rc := ctxt.Backend.ListAssociations(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_associations", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagAssociationRec, r, ctxt.Env))
	}
	ctxt.SetPayload("associations", tree.List(elems...))
}

// upsertAssociations implements POST /associations: a record with an id
// is modified by computing a TRES diff record against the existing row
// and calling associations_modify(diff) rather than overwriting; a
// record with no id is added outright.
func upsertAssociations(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "associations", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "associations", "body must be a list of association records")
		return
	}

	for _, node := range nodes {
		rec := &v0039.AssociationRec{}
		if code := ctxt.Parser.Parse(v0039.TagAssociationRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}

		if rec.ID == 0 {
			if code := ctxt.DBQueryRC(ctxt.Backend.AddAssociations(ctxt.Context, []*v0039.AssociationRec{rec}), "add_associations"); code != envelope.CodeNone {
				return
			}
			continue
		}

		existing, rc := ctxt.Backend.GetAssociation(ctxt.Context, rec.ID)
		if rc != backend.RCSuccess {
			ctxt.RespError(envelope.CodeDataPathNotFound, "associations", "unknown association id %d", rec.ID)
			return
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
		if code := ctxt.DBModify(rc, len(modified), "associations_modify"); code != envelope.CodeNone {
			return
		}
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

// removeAssociations implements DELETE /associations: aborts if
// only_one=true and the condition matches more than one association.
func removeAssociations(ctxt *restapi.Ctxt) {
	onlyOne := queryString(ctxt, "only_one", "") == "true"
	cond := condFromQuery(ctxt, "only_one")

	if onlyOne {
		matches, rc := ctxt.Backend.ListAssociations(ctxt.Context, cond)
		if rc != backend.RCSuccess && rc != backend.RCNoChangeInData {
			ctxt.RespError(envelope.CodeDBConnection, "associations", "list_associations failed (rc=%d)", rc)
			return
		}
		if len(matches) > 1 {
			ctxt.RespError(envelope.CodeDataAmbiguousModify, "associations", "only_one requested but %d associations matched", len(matches))
			return
		}
	}

	recs, rc := ctxt.Backend.RemoveAssociations(ctxt.Context, cond)
	if code := ctxt.DBModify(rc, len(recs), "remove_associations"); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagAssociationRec, r, ctxt.Env))
	}
	ctxt.SetPayload("removed_associations", tree.List(elems...))
}

// tresDiff computes the per-key diff record spec.md §4.I describes:
// keys dropped from existing get count -1, keys whose count changed (or
// that are new) get the incoming count.
func tresDiff(existingStr, incomingStr string) string {
	existing := parseTresStr(existingStr)
	incoming := parseTresStr(incomingStr)

	diff := make(map[string]string)
	for k := range existing {
		if _, ok := incoming[k]; !ok {
			diff[k] = "-1"
		}
	}
	for k, v := range incoming {
		if ev, ok := existing[k]; !ok || ev != v {
			diff[k] = v
		}
	}
	return serializeTresStr(diff)
}

func parseTresStr(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func serializeTresStr(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}
