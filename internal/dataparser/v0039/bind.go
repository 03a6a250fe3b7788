package v0039

import (
	"fmt"

	"slurmrestd/internal/envelope"
	"slurmrestd/internal/tree"
)

// bindString reads key from node into *dst if present, reporting a
// type-mismatch error through env when the field exists but is not
// string-convertible. Absent keys leave *dst untouched (PARSE only
// binds what the caller actually sent).
func bindString(node *tree.Value, key string, dst *string, path string, env *envelope.Envelope) envelope.Code {
	child, ok := node.DictKeyGet(key)
	if !ok {
		return envelope.CodeNone
	}
	s, cerr := child.String()
	if cerr != nil {
		converted, cerr2 := tree.Convert(child, tree.KindString)
		if cerr2 != nil {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE",
				"%s/%s: expected string", path, key)
		}
		s, _ = converted.String()
	}
	*dst = s
	return envelope.CodeNone
}

func bindInt64(node *tree.Value, key string, dst *int64, path string, env *envelope.Envelope) envelope.Code {
	child, ok := node.DictKeyGet(key)
	if !ok {
		return envelope.CodeNone
	}
	n, cerr := child.Int64()
	if cerr != nil {
		converted, cerr2 := tree.Convert(child, tree.KindInt64)
		if cerr2 != nil {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE",
				"%s/%s: expected int64", path, key)
		}
		n, _ = converted.Int64()
	}
	*dst = n
	return envelope.CodeNone
}

func bindStringList(node *tree.Value, key string, dst *[]string, path string, env *envelope.Envelope) envelope.Code {
	child, ok := node.DictKeyGet(key)
	if !ok {
		return envelope.CodeNone
	}
	elems, lerr := child.List()
	if lerr != nil {
		return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE",
			"%s/%s: expected list", path, key)
	}
	out := make([]string, 0, len(elems))
	for i, e := range elems {
		s, serr := e.String()
		if serr != nil {
			return env.RespError(envelope.CodeDataExpectedTypeMismatch, "PARSE",
				"%s/%s[%d]: expected string", path, key, i)
		}
		out = append(out, s)
	}
	*dst = out
	return envelope.CodeNone
}

func dumpField(d *tree.Value, key string, v *tree.Value) {
	slot, err := d.DictKeySet(key)
	if err != nil {
		panic(fmt.Sprintf("v0039: dump into non-dict node: %v", err))
	}
	*slot = *v
}

func dumpStringList(vals []string) *tree.Value {
	elems := make([]*tree.Value, 0, len(vals))
	for _, s := range vals {
		elems = append(elems, tree.NewString(s))
	}
	return tree.List(elems...)
}
