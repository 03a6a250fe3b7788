package operations

import (
	"strings"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurm/{data_parser}/reservations/", reservationsHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/reservation/{reservation_name}", reservationsHandler, router.GET)
}

// reservationsHandler implements the read-only GET /reservations/,
// /reservation/{name} pair with the same filter/404 contract as
// partitionsHandler.
func reservationsHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "reservation_name")

	reservations, rc := ctxt.Backend.LoadReservations(ctxt.Context)
	if rc != backend.RCSuccess && rc != backend.RCAlreadyDone {
		ctxt.RespError(envelope.CodeDBConnection, "reservations", "load_reservations failed (rc=%d)", rc)
		return
	}

	if name != "" {
		filtered := reservations[:0:0]
		for _, r := range reservations {
			if strings.EqualFold(r.Name, name) {
				filtered = append(filtered, r)
			}
		}
		reservations = filtered
		if len(reservations) == 0 {
			ctxt.RespError(envelope.CodeReservationInvalid, "reservations", "unknown reservation %s", name)
			return
		}
	}

	elems := make([]*tree.Value, 0, len(reservations))
	for _, r := range reservations {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagReservationInfoMsg, r, ctxt.Env))
	}
	ctxt.SetPayload("reservations", tree.List(elems...))
}
