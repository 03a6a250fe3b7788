package operations

import (
	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
)

// init registers the straight GET passthroughs spec.md §4.I groups
// together: ping, diag, licenses, shares, reconfigure.
func init() {
	restapi.RegisterOperation("/slurm/{data_parser}/ping/", pingHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/diag/", diagHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/licenses/", licensesHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/shares", sharesHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/reconfigure/", reconfigureHandler, router.GET)
}

func pingHandler(ctxt *restapi.Ctxt) {
	resp, rc := ctxt.Backend.Ping(ctxt.Context)
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeDBConnection, "ping", "ping failed (rc=%d)", rc)
		return
	}
	ctxt.SetPayload("pings", ctxt.Parser.Dump(v0039.TagPingResp, resp, ctxt.Env))
}

func diagHandler(ctxt *restapi.Ctxt) {
	resp, rc := ctxt.Backend.Diag(ctxt.Context)
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeDBConnection, "diag", "diag failed (rc=%d)", rc)
		return
	}
	ctxt.SetPayload("statistics", ctxt.Parser.Dump(v0039.TagDiagResp, resp, ctxt.Env))
}

func licensesHandler(ctxt *restapi.Ctxt) {
	resp, rc := ctxt.Backend.Licenses(ctxt.Context)
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeDBConnection, "licenses", "licenses failed (rc=%d)", rc)
		return
	}
	ctxt.SetPayload("licenses", ctxt.Parser.Dump(v0039.TagLicensesResp, resp, ctxt.Env))
}

func sharesHandler(ctxt *restapi.Ctxt) {
	resp, rc := ctxt.Backend.Shares(ctxt.Context)
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeDBConnection, "shares", "shares failed (rc=%d)", rc)
		return
	}
	ctxt.SetPayload("shares", ctxt.Parser.Dump(v0039.TagSharesResp, resp, ctxt.Env))
}

// reconfigureHandler triggers nothing in the reference backend; it
// exists so operator tooling built against the real endpoint catalogue
// gets a well-formed RESP rather than a 404.
func reconfigureHandler(ctxt *restapi.Ctxt) {
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}
