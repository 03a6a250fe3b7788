package operations

import (
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/wckeys", wckeysCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurmdb/{data_parser}/wckey/{wckey_name}", wckeySingleHandler, router.GET, router.DELETE)
}

func wckeysCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listWckeys(ctxt, nil)
	case router.POST:
		addWckeys(ctxt)
	}
}

func wckeySingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "wckey_name")
	cond := map[string]string{"name": name}
	switch ctxt.Method {
	case router.GET:
		listWckeys(ctxt, cond)
	case router.DELETE:
		removeWckeys(ctxt, cond)
	}
}

func listWckeys(ctxt *restapi.Ctxt, cond map[string]string) {
	if cond == nil {
		cond = condFromQuery(ctxt)
	}
	recs, rc := ctxt.Backend.ListWckeys(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_wckeys", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagWckeyRec, r, ctxt.Env))
	}
	ctxt.SetPayload("wckeys", tree.List(elems...))
}

// addWckeys implements POST /wckeys: a straight add, no modify path
// (spec.md §4.I groups wckeys with clusters and TRES as "straight
// add/get/modify/remove").
func addWckeys(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "wckeys", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "wckeys", "body must be a list of wckey records")
		return
	}

	recs := make([]*v0039.WckeyRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.WckeyRec{}
		if code := ctxt.Parser.Parse(v0039.TagWckeyRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}
		recs = append(recs, rec)
	}

	if code := ctxt.DBQueryRC(ctxt.Backend.AddWckeys(ctxt.Context, recs), "add_wckeys"); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

func removeWckeys(ctxt *restapi.Ctxt, cond map[string]string) {
	recs, rc := ctxt.Backend.RemoveWckeys(ctxt.Context, cond)
	if code := ctxt.DBModify(rc, len(recs), "remove_wckeys"); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagWckeyRec, r, ctxt.Env))
	}
	ctxt.SetPayload("removed_wckeys", tree.List(elems...))
}
