package operations

import (
	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/tres", tresHandler, router.GET, router.POST)
}

func tresHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listTres(ctxt)
	case router.POST:
		addTres(ctxt)
	}
}

func listTres(ctxt *restapi.Ctxt) {
	cond := condFromQuery(ctxt)
	recs, rc := ctxt.Backend.ListTres(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_tres", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagTresRec, r, ctxt.Env))
	}
	ctxt.SetPayload("tres", tree.List(elems...))
}

// addTres implements POST /tres: plain adds always succeed; updating an
// existing type+name pair is rejected outside developer builds.
func addTres(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "tres", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "tres", "body must be a list of TRES records")
		return
	}

	recs := make([]*v0039.TresRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.TresRec{}
		if code := ctxt.Parser.Parse(v0039.TagTresRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}

		if !tresUpdateEnabled {
			existing, rc := ctxt.Backend.ListTres(ctxt.Context, map[string]string{"type": rec.Type, "name": rec.Name})
			if rc == backend.RCSuccess && len(existing) > 0 {
				ctxt.RespError(envelope.CodeNotSupported, "tres", "updating TRES %s/%s requires a developer build", rec.Type, rec.Name)
				return
			}
		}
		recs = append(recs, rec)
	}

	if code := ctxt.DBQueryRC(ctxt.Backend.AddTres(ctxt.Context, recs), "add_tres"); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}
