package restapi

import (
	"fmt"

	"slurmrestd/internal/tree"
)

// treeToNative flattens a data-tree Value into plain Go values
// (map[string]any / []any / primitives) that gopkg.in/yaml.v3 can
// marshal directly. The JSON path has its own hand-rolled emitter
// (internal/serializer/json); YAML responses are the "SHOULD be
// supported via the same data tree" ancillary path spec.md §6 calls
// out, so it is acceptable to lean on a real YAML library here instead
// of hand-rolling a second emitter.
func treeToNative(v *tree.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind() {
	case tree.KindNull:
		return nil, nil
	case tree.KindBool:
		return v.Bool()
	case tree.KindInt64:
		return v.Int64()
	case tree.KindDouble:
		return v.Double()
	case tree.KindString:
		return v.String()
	case tree.KindList:
		elems, err := v.List()
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(elems))
		for _, e := range elems {
			nv, err := treeToNative(e)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case tree.KindDict:
		out := make(map[string]any)
		var walkErr error
		_, _ = v.DictForEachConst(func(key string, child *tree.Value) tree.ForEachCmd {
			nv, err := treeToNative(child)
			if err != nil {
				walkErr = err
				return tree.Fail
			}
			out[key] = nv
			return tree.Cont
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return out, nil
	default:
		return nil, fmt.Errorf("restapi: unhandled tree kind %d", v.Kind())
	}
}
