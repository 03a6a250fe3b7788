package tree

// Dict is a convenience constructor: it builds a Dict node from a
// sequence of key/value pairs, preserving the order kvs were supplied in. Handlers
// use it to assemble DUMP output without hand-rolling DictKeySet calls
// for every literal field.
func Dict(kvs ...KV) *Value {
	d := NewDict()
	for _, kv := range kvs {
		d.dict.set(kv.Key, kv.Val)
	}
	return d
}

// KV is one key/value pair passed to Dict.
type KV struct {
	Key string
	Val *Value
}

// S builds a KV with a string value.
func S(key, val string) KV { return KV{Key: key, Val: NewString(val)} }

// I builds a KV with an int64 value.
func I(key string, val int64) KV { return KV{Key: key, Val: NewInt64(val)} }

// Bo builds a KV with a bool value.
func Bo(key string, val bool) KV { return KV{Key: key, Val: NewBool(val)} }

// D builds a KV with a double value.
func D(key string, val float64) KV { return KV{Key: key, Val: NewDouble(val)} }

// V builds a KV from an already-constructed Value (a List, a Dict, or
// another primitive).
func V(key string, val *Value) KV { return KV{Key: key, Val: val} }

// List builds a List node from already-constructed elements.
func List(elems ...*Value) *Value {
	l := NewList()
	l.list = append(l.list, elems...)
	return l
}
