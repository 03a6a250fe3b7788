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

// defaultNodeShowFlags mirrors the reference source's default
// SHOW_ALL|SHOW_DETAIL|SHOW_MIXED bitmask for node listings; the façade
// always passes this value and never exposes the individual bits.
const defaultNodeShowFlags int64 = 0x07

func init() {
	restapi.RegisterOperation("/slurm/{data_parser}/nodes/", nodesCollectionHandler, router.GET, router.POST)
	restapi.RegisterOperation("/slurm/{data_parser}/node/{node_name}", nodeSingleHandler, router.GET, router.POST, router.DELETE)
}

func nodesCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		listNodes(ctxt, "")
	case router.POST:
		msg := &v0039.UpdateNodeMsg{}
		if code := ctxt.Parser.Parse(v0039.TagUpdateNodeMsg, msg, ctxt.Body, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
			return
		}
		if msg.NodeNames == "" {
			ctxt.RespError(envelope.CodeRestInvalidQuery, "nodes", "POST /nodes/ requires node_names in the body")
			return
		}
		if code := ctxt.DBQueryRC(ctxt.Backend.UpdateNode(ctxt.Context, msg), "update_node"); code != envelope.CodeNone {
			return
		}
		ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
	}
}

func nodeSingleHandler(ctxt *restapi.Ctxt) {
	name := pathParam(ctxt, "node_name")
	switch ctxt.Method {
	case router.GET:
		listNodes(ctxt, name)
	case router.POST:
		updateNode(ctxt, name)
	case router.DELETE:
		deleteNode(ctxt, name)
	}
}

// listNodes implements GET /nodes/ and GET /node/{name}: load_node(s),
// cross-reference load_partitions, attach each matching partition's
// name to the node (the populate_node_partitions step).
func listNodes(ctxt *restapi.Ctxt, name string) {
	var nodes []*v0039.NodeInfoMsg
	var rc backend.RC
	if name == "" {
		nodes, rc = ctxt.Backend.LoadNodes(ctxt.Context, defaultNodeShowFlags)
	} else {
		var n *v0039.NodeInfoMsg
		n, rc = ctxt.Backend.LoadNodeSingle(ctxt.Context, name)
		if rc == backend.RCSuccess {
			nodes = []*v0039.NodeInfoMsg{n}
		}
	}
	if rc != backend.RCSuccess {
		if name != "" {
			ctxt.RespError(envelope.CodeDataPathNotFound, "nodes", "unknown node %s", name)
			return
		}
		ctxt.RespError(envelope.CodeDBConnection, "nodes", "load_nodes failed (rc=%d)", rc)
		return
	}

	partitions, prc := ctxt.Backend.LoadPartitions(ctxt.Context)
	if prc != backend.RCSuccess && prc != backend.RCAlreadyDone {
		ctxt.RespWarn("nodes", "load_partitions failed (rc=%d), partition membership omitted", prc)
		partitions = nil
	}
	populateNodePartitions(nodes, partitions)

	elems := make([]*tree.Value, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagNodeInfoMsg, n, ctxt.Env))
	}
	ctxt.SetPayload("nodes", tree.List(elems...))
}

// populateNodePartitions cross-references each node against every
// partition's node range string, appending the partition's name to any
// node it names.
func populateNodePartitions(nodes []*v0039.NodeInfoMsg, partitions []*v0039.PartitionInfoMsg) {
	for _, n := range nodes {
		n.Partitions = n.Partitions[:0]
		for _, p := range partitions {
			if partitionListsNode(p.Nodes, n.Name) {
				n.Partitions = append(n.Partitions, p.Name)
			}
		}
	}
}

func partitionListsNode(nodeList, name string) bool {
	for _, entry := range strings.Split(nodeList, ",") {
		if strings.TrimSpace(entry) == name {
			return true
		}
	}
	return false
}

// updateNode implements POST /node/{name}: warn and ignore any
// node_names field in the body, force node_names to the path name.
func updateNode(ctxt *restapi.Ctxt, name string) {
	if name == "" {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "nodes", "node_name path segment is required")
		return
	}
	msg := &v0039.UpdateNodeMsg{}
	if code := ctxt.Parser.Parse(v0039.TagUpdateNodeMsg, msg, ctxt.Body, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
		return
	}
	msg.NodeNames = name

	rc := ctxt.Backend.UpdateNode(ctxt.Context, msg)
	if code := ctxt.DBQueryRC(rc, "update_node"); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}

// deleteNode implements DELETE /node/{name}: trivial call, path name
// must be non-empty.
func deleteNode(ctxt *restapi.Ctxt, name string) {
	if name == "" {
		ctxt.RespError(envelope.CodeRestInvalidQuery, "nodes", "node_name path segment is required")
		return
	}
	rc := ctxt.Backend.DeleteNode(ctxt.Context, name)
	if code := ctxt.DBQueryRC(rc, "delete_node"); code != envelope.CodeNone {
		return
	}
	ctxt.SetPayload("result", ctxt.Parser.Dump(v0039.TagResp, &v0039.Resp{}, ctxt.Env))
}
