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
	restapi.RegisterOperation("/slurm/{data_parser}/partitions/", partitionsHandler, router.GET)
	restapi.RegisterOperation("/slurm/{data_parser}/partition/{partition_name}", partitionsHandler, router.GET)
}

// partitionsHandler implements the read-only GET /partitions/,
// /partition/{name} pair: the path-param variant filters the result set
// case-insensitively and returns a 404-style error if nothing matches.
func partitionsHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "partition_name")

	partitions, rc := ctxt.Backend.LoadPartitions(ctxt.Context)
	if rc != backend.RCSuccess && rc != backend.RCAlreadyDone {
		ctxt.RespError(envelope.CodeDBConnection, "partitions", "load_partitions failed (rc=%d)", rc)
		return
	}

	if name != "" {
		filtered := partitions[:0:0]
		for _, p := range partitions {
			if strings.EqualFold(p.Name, name) {
				filtered = append(filtered, p)
			}
		}
		partitions = filtered
		if len(partitions) == 0 {
			ctxt.RespError(envelope.CodeInvalidPartitionName, "partitions", "unknown partition %s", name)
			return
		}
	}

	elems := make([]*tree.Value, 0, len(partitions))
	for _, p := range partitions {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagPartitionInfoMsg, p, ctxt.Env))
	}
	ctxt.SetPayload("partitions", tree.List(elems...))
}
