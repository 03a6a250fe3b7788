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
	restapi.RegisterOperation("/slurmdb/{data_parser}/accounts", accountsCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurmdb/{data_parser}/account/{account_name}", accountSingleHandler, router.GET, router.DELETE)
}

func accountsCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listAccounts(ctxt, nil)
	case router.POST:
		upsertAccounts(ctxt)
	}
}

func accountSingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "account_name")
	cond := map[string]string{"name": name}
	switch ctxt.Method {
	case router.GET:
		listAccounts(ctxt, cond)
	case router.DELETE:
		removeAccounts(ctxt, cond)
	}
}

func listAccounts(ctxt *restapi.Ctxt, cond map[string]string) {
	if cond == nil {
		cond = condFromQuery(ctxt)
	}
	recs, rc := ctxt.Backend.ListAccounts(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_accounts", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagAccountRec, r, ctxt.Env))
	}
	ctxt.SetPayload("accounts", tree.List(elems...))
}

// upsertAccounts implements POST /accounts: each incoming record is
// added if new, or reconciled in place if it already exists; on modify
// the coordinator set is reconciled via coord_add/coord_remove rather
// than overwritten wholesale (spec.md §4.I "Accounts (dbd)").
func upsertAccounts(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "accounts", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "accounts", "body must be a list of account records")
		return
	}

	for _, node := range nodes {
		rec := &v0039.AccountRec{}
		if code := ctxt.Parser.Parse(v0039.TagAccountRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}

		existing, rc := ctxt.Backend.ListAccounts(ctxt.Context, map[string]string{"name": rec.Name})
		if rc != backend.RCSuccess && rc != backend.RCNoChangeInData {
			ctxt.RespError(envelope.CodeDBConnection, "accounts", "list_accounts failed (rc=%d)", rc)
			return
		}

		if len(existing) == 0 {
			if code := ctxt.DBQueryRC(ctxt.Backend.AddAccounts(ctxt.Context, []*v0039.AccountRec{rec}), "add_accounts"); code != envelope.CodeNone {
				return
			}
			continue
		}

		add, remove := reconcileCoordinators(existing[0].Coordinators, rec.Coordinators)
		if len(add) > 0 {
			if code := ctxt.DBQueryRC(ctxt.Backend.CoordAdd(ctxt.Context, rec.Name, add), "coord_add"); code != envelope.CodeNone {
				return
			}
		}
		if len(remove) > 0 {
			if code := ctxt.DBQueryRC(ctxt.Backend.CoordRemove(ctxt.Context, rec.Name, remove), "coord_remove"); code != envelope.CodeNone {
				return
			}
		}

		_, rc = ctxt.Backend.ModifyAccounts(ctxt.Context, map[string]string{"name": rec.Name}, rec)
		if code := ctxt.DBQueryRC(rc, "modify_accounts"); code != envelope.CodeNone {
			return
		}
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

func removeAccounts(ctxt *restapi.Ctxt, cond map[string]string) {
	recs, rc := ctxt.Backend.RemoveAccounts(ctxt.Context, cond)
	if code := ctxt.DBModify(rc, len(recs), "remove_accounts"); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagAccountRec, r, ctxt.Env))
	}
	ctxt.SetPayload("removed_accounts", tree.List(elems...))
}

// reconcileCoordinators diffs the existing coordinator set against the
// incoming one, returning names to add and names to remove.
func reconcileCoordinators(existing, incoming []string) (add, remove []string) {
	existSet := make(map[string]bool, len(existing))
	for _, n := range existing {
		existSet[n] = true
	}
	incomingSet := make(map[string]bool, len(incoming))
	for _, n := range incoming {
		incomingSet[n] = true
		if !existSet[n] {
			add = append(add, n)
		}
	}
	for _, n := range existing {
		if !incomingSet[n] {
			remove = append(remove, n)
		}
	}
	return add, remove
}
