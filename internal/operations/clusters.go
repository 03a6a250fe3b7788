package operations

import (
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurmdb/{data_parser}/clusters", clustersCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurmdb/{data_parser}/cluster/{cluster_name}", clusterSingleHandler, router.GET)
}

func clustersCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listClusters(ctxt, nil)
	case router.POST:
		addClusters(ctxt)
	}
}

func clusterSingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "cluster_name")
	listClusters(ctxt, map[string]string{"name": name})
}

func listClusters(ctxt *restapi.Ctxt, cond map[string]string) {
	if cond == nil {
		cond = condFromQuery(ctxt)
	}
	recs, rc := ctxt.Backend.ListClusters(ctxt.Context, cond)
	if code := ctxt.DBQueryList(rc, len(recs), "list_clusters", false); code != envelope.CodeNone {
		return
	}
	elems := make([]*tree.Value, 0, len(recs))
	for _, r := range recs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagClusterRec, r, ctxt.Env))
	}
	ctxt.SetPayload("clusters", tree.List(elems...))
}

func addClusters(ctxt *restapi.Ctxt) {
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "clusters", "request body is required")
		return
	}
	nodes, lerr := ctxt.Body.List()
	if lerr != nil {
		ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, "clusters", "body must be a list of cluster records")
		return
	}

	recs := make([]*v0039.ClusterRec, 0, len(nodes))
	for _, node := range nodes {
		rec := &v0039.ClusterRec{}
		if code := ctxt.Parser.Parse(v0039.TagClusterRec, rec, node, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}
		recs = append(recs, rec)
	}

	if code := ctxt.DBQueryRC(ctxt.Backend.AddClusters(ctxt.Context, recs), "add_clusters"); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}
