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
	restapi.RegisterOperation("/slurmdb/{data_parser}/users", usersCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurmdb/{data_parser}/user/{user_name}", userSingleHandler, router.GET, router.DELETE)
}

func usersCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listUsers(ctxt, nil)
	case router.POST:
		upsertUsers(ctxt)
	}
}

func userSingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "user_name")
	cond := map[string]string{"name": name}
	switch ctxt.Method {
	case router.GET:
		listUsers(ctxt, cond)
	case router.DELETE:
		removeUsers(ctxt, cond)
	}
}

func listUsers(ctxt *restapi.Ctxt, cond map[string]string) {
	if cond == nil {
		cond = condFromQuery(ctxt)
	}
	recs, rc := ctxt.Backend.ListUsers(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_users", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagUserRec, r, ctxt.Env))
	}
	ctxt.SetPayload("users", tree.List(elems...))
}

// upsertUsers implements POST /users: a rename (old_name -> name) is
// validated (source exists, destination doesn't) before being applied;
// a default_wckey absent from wckey_list is synthesized as a new wckey
// bound to the requesting cluster (spec.md §4.I "Users (dbd)").
func upsertUsers(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "users", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "users", "body must be a list of user records")
		return
	}

	cluster := queryString(ctxt, "cluster", "")

	for _, node := range nodes {
		rec := &v0039.UserRec{}
		if code := ctxt.Parser.Parse(v0039.TagUserRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}

		if rec.OldName != "" {
			if _, rc := ctxt.Backend.GetUser(ctxt.Context, rec.OldName); rc != backend.RCSuccess {
				ctxt.RespError(envelope.CodeDataPathNotFound, "users", "rename source %s does not exist", rec.OldName)
				return
			}
			if _, rc := ctxt.Backend.GetUser(ctxt.Context, rec.Name); rc == backend.RCSuccess {
				ctxt.RespError(envelope.CodeDataAmbiguousModify, "users", "rename destination %s already exists", rec.Name)
				return
			}
		}

		if rec.DefaultWckey != "" && !stringsContain(rec.WckeyList, rec.DefaultWckey) {
			rec.WckeyList = append(rec.WckeyList, rec.DefaultWckey)
			synth := &v0039.WckeyRec{Name: rec.DefaultWckey, Cluster: cluster, User: rec.Name}
			if code := ctxt.DBQueryRC(ctxt.Backend.AddWckeys(ctxt.Context, []*v0039.WckeyRec{synth}), "add_wckeys"); code != envelope.CodeNone {
				return
			}
		}

		lookupName := rec.Name
		if rec.OldName != "" {
			lookupName = rec.OldName
		}
		_, rc := ctxt.Backend.GetUser(ctxt.Context, lookupName)
		if rc != backend.RCSuccess {
			if code := ctxt.DBQueryRC(ctxt.Backend.AddUsers(ctxt.Context, []*v0039.UserRec{rec}), "add_users"); code != envelope.CodeNone {
				return
			}
			continue
		}

		modified, rc := ctxt.Backend.ModifyUser(ctxt.Context, rec)
		if code := ctxt.DBModify(rc, len(modified), "modify_user"); code != envelope.CodeNone {
			return
		}
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

func removeUsers(ctxt *restapi.Ctxt, cond map[string]string) {
	recs, rc := ctxt.Backend.RemoveUsers(ctxt.Context, cond)
	if code := ctxt.DBModify(rc, len(recs), "remove_users"); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagUserRec, r, ctxt.Env))
	}
	ctxt.SetPayload("removed_users", tree.List(elems...))
}

func stringsContain(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
