package restapi

import (
	"slurmrestd/internal/backend"
	"slurmrestd/internal/envelope"
)

// DBQueryList translates the RC from a backend list RPC into the
// envelope behavior spec.md §4.H's db_query_list contract describes:
// NO_CHANGE_IN_DATA produces no list and a warning, any other non-zero
// RC is an error, and success with zero results optionally warns.
func (c *Ctxt) DBQueryList(rc backend.RC, listLen int, source string, warnOnEmpty bool) envelope.Code {
	switch rc {
	case backend.RCNoChangeInData:
		c.Env.RespWarn(source, "no change in data since last query")
		return envelope.CodeNone
	case backend.RCSuccess, backend.RCAlreadyDone:
		if listLen == 0 && warnOnEmpty {
			c.Env.RespWarn(source, "query returned no results")
		}
		return envelope.CodeNone
	default:
		return c.Env.RespError(envelope.CodeDBConnection, source, "backend query failed (rc=%d)", rc)
	}
}

// DBQueryRC translates the RC from a backend add/set RPC, flagging the
// transaction for commit on success (db_query_rc).
func (c *Ctxt) DBQueryRC(rc backend.RC, source string) envelope.Code {
	if rc != backend.RCSuccess && rc != backend.RCAlreadyDone {
		return c.Env.RespError(envelope.CodeDBConnection, source, "backend operation failed (rc=%d)", rc)
	}
	c.SetCommit()
	return envelope.CodeNone
}

// DBModify translates the RC and changed-row count from a backend
// modify RPC, erroring if the returned set is empty (db_modify: "surface
// error if the returned list is null").
func (c *Ctxt) DBModify(rc backend.RC, changedLen int, source string) envelope.Code {
	if rc != backend.RCSuccess {
		return c.Env.RespError(envelope.CodeDBConnection, source, "backend modify failed (rc=%d)", rc)
	}
	if changedLen == 0 {
		return c.Env.RespError(envelope.CodeDataEmptyResult, source, "modify matched no records")
	}
	c.SetCommit()
	return envelope.CodeNone
}

// DBQueryCommit flags intent to commit for handlers (e.g. the config
// fan-out) that perform several mutating steps and only want one
// commit at the very end (db_query_commit).
func (c *Ctxt) DBQueryCommit() envelope.Code {
	c.SetCommit()
	return envelope.CodeNone
}
