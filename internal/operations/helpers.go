package operations

import (
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/tree"
)

// queryInt64 reads an optional int64 query parameter, returning def if
// absent or not convertible.
func queryInt64(ctxt *restapi.Ctxt, key string, def int64) int64 {
	if ctxt.Query == nil {
		return def
	}
	node, ok := ctxt.Query.DictKeyGet(key)
	if !ok {
		return def
	}
	n, err := node.Int64()
	if err != nil {
		return def
	}
	return n
}

// queryString reads an optional string query parameter, returning def
// if absent.
func queryString(ctxt *restapi.Ctxt, key, def string) string {
	if ctxt.Query == nil {
		return def
	}
	node, ok := ctxt.Query.DictKeyGet(key)
	if !ok {
		return def
	}
	s, err := node.String()
	if err != nil {
		return def
	}
	return s
}

// pathParam reads a captured path placeholder.
func pathParam(ctxt *restapi.Ctxt, key string) string {
	node, ok := ctxt.Params.DictKeyGet(key)
	if !ok {
		return ""
	}
	s, _ := node.String()
	return s
}

// condFromQuery turns a flat query dict into the map[string]string
// condition shape the dbd list/remove RPCs take, skipping reserved
// pagination/formatting keys.
func condFromQuery(ctxt *restapi.Ctxt, reserved ...string) map[string]string {
	skip := make(map[string]bool, len(reserved))
	for _, k := range reserved {
		skip[k] = true
	}
	cond := make(map[string]string)
	if ctxt.Query == nil {
		return cond
	}
	_, _ = ctxt.Query.DictForEachConst(func(key string, child *tree.Value) tree.ForEachCmd {
		if skip[key] {
			return tree.Cont
		}
		s, err := child.String()
		if err != nil {
			return tree.Cont
		}
		cond[key] = s
		return tree.Cont
	})
	return cond
}
