// Package tree implements the self-describing value used throughout the
// façade: a tagged union over null, bool, int64, double, string, ordered
// list and ordered dict, with type coercion, path resolution, deep
// equality and a mutation-safe iteration protocol.
//
// Containers own their children exclusively; there are no shared
// sub-trees and no cycles. A Value's kind may be changed by an explicit
// SetX call, which first releases any children the previous kind held.
package tree

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies which payload field of a Value is active.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindDouble
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// ForEachCmd is the command a visitor returns from a for-each callback.
type ForEachCmd int

const (
	// Cont continues the walk.
	Cont ForEachCmd = iota
	// Stop terminates the walk without error.
	Stop
	// Fail terminates the walk; the visit count is reported negated.
	Fail
	// Delete removes the current element and continues. Illegal during
	// const iteration.
	Delete
)

// Value is a single node of the data tree.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    float64
	s    string
	list []*Value
	dict *dict
}

// New returns a freshly allocated null node.
func New() *Value { return &Value{kind: KindNull} }

// NewBool returns a bool node.
func NewBool(v bool) *Value { return &Value{kind: KindBool, b: v} }

// NewInt64 returns an int64 node.
func NewInt64(v int64) *Value { return &Value{kind: KindInt64, i: v} }

// NewDouble returns a double node.
func NewDouble(v float64) *Value { return &Value{kind: KindDouble, d: v} }

// NewString returns a string node.
func NewString(v string) *Value { return &Value{kind: KindString, s: v} }

// NewList returns an empty list node.
func NewList() *Value { return &Value{kind: KindList} }

// NewDict returns an empty dict node.
func NewDict() *Value { return &Value{kind: KindDict, dict: newDict()} }

// Kind reports the active tag.
func (v *Value) Kind() Kind { return v.kind }

// release drops ownership of any container children, matching the
// source's requirement that set_* first release what the node owned.
func (v *Value) release() {
	v.list = nil
	v.dict = nil
}

// SetNull clears the node to null.
func (v *Value) SetNull() *Value {
	v.release()
	*v = Value{kind: KindNull}
	return v
}

// SetBool asserts and sets the bool payload.
func (v *Value) SetBool(b bool) *Value {
	v.release()
	*v = Value{kind: KindBool, b: b}
	return v
}

// SetInt64 sets the int64 payload.
func (v *Value) SetInt64(i int64) *Value {
	v.release()
	*v = Value{kind: KindInt64, i: i}
	return v
}

// SetDouble sets the double payload.
func (v *Value) SetDouble(d float64) *Value {
	v.release()
	*v = Value{kind: KindDouble, d: d}
	return v
}

// SetString sets the string payload.
func (v *Value) SetString(s string) *Value {
	v.release()
	*v = Value{kind: KindString, s: s}
	return v
}

// SetList resets the node to an empty list.
func (v *Value) SetList() *Value {
	v.release()
	*v = Value{kind: KindList}
	return v
}

// SetDict resets the node to an empty dict.
func (v *Value) SetDict() *Value {
	v.release()
	*v = Value{kind: KindDict, dict: newDict()}
	return v
}

// ErrWrongType is returned (or wrapped) whenever a typed accessor is
// used against a node of a different kind.
type ErrWrongType struct {
	Want Kind
	Have Kind
}

func (e *ErrWrongType) Error() string {
	return fmt.Sprintf("data: expected %s, have %s", e.Want, e.Have)
}

// Bool asserts the node is a bool and returns its payload.
func (v *Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, &ErrWrongType{Want: KindBool, Have: v.kind}
	}
	return v.b, nil
}

// Int64 asserts the node is an int64 and returns its payload.
func (v *Value) Int64() (int64, error) {
	if v.kind != KindInt64 {
		return 0, &ErrWrongType{Want: KindInt64, Have: v.kind}
	}
	return v.i, nil
}

// Double asserts the node is a double and returns its payload.
func (v *Value) Double() (float64, error) {
	if v.kind != KindDouble {
		return 0, &ErrWrongType{Want: KindDouble, Have: v.kind}
	}
	return v.d, nil
}

// String asserts the node is a string and returns its payload.
func (v *Value) String() (string, error) {
	if v.kind != KindString {
		return "", &ErrWrongType{Want: KindString, Have: v.kind}
	}
	return v.s, nil
}

// MustString is a convenience accessor for callers that have already
// confirmed the kind (e.g. via a successful path resolution against a
// known schema); it returns the zero value for the wrong kind instead
// of panicking, since request data is never trusted enough to justify
// a panic on shape mismatch.
func (v *Value) MustString() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// List asserts the node is a list and returns its backing slice. The
// slice is owned by the node; callers must go through ListAppend et al.
// to mutate it.
func (v *Value) List() ([]*Value, error) {
	if v.kind != KindList {
		return nil, &ErrWrongType{Want: KindList, Have: v.kind}
	}
	return v.list, nil
}

// Dict asserts the node is a dict.
func (v *Value) Dict() (*dictView, error) {
	if v.kind != KindDict {
		return nil, &ErrWrongType{Want: KindDict, Have: v.kind}
	}
	return &dictView{d: v.dict}, nil
}

// ListLen returns the number of list elements, or 0 if not a list.
func (v *Value) ListLen() int {
	if v.kind != KindList {
		return 0
	}
	return len(v.list)
}

// ListAppend appends child to the list, taking ownership of it.
func (v *Value) ListAppend(child *Value) error {
	if v.kind != KindList {
		return &ErrWrongType{Want: KindList, Have: v.kind}
	}
	v.list = append(v.list, child)
	return nil
}

// ListPrepend prepends child to the list, taking ownership of it.
func (v *Value) ListPrepend(child *Value) error {
	if v.kind != KindList {
		return &ErrWrongType{Want: KindList, Have: v.kind}
	}
	v.list = append([]*Value{child}, v.list...)
	return nil
}

// ListForEach walks the list, allowing mutation (including Delete of
// the current element) as directed by f's return value. It returns the
// number of elements visited, negated if the walk ended in Fail.
func (v *Value) ListForEach(f func(i int, child *Value) ForEachCmd) (int, error) {
	if v.kind != KindList {
		return 0, &ErrWrongType{Want: KindList, Have: v.kind}
	}
	visits := 0
	i := 0
	for i < len(v.list) {
		cmd := f(i, v.list[i])
		visits++
		switch cmd {
		case Cont:
			i++
		case Stop:
			return visits, nil
		case Fail:
			return -visits, nil
		case Delete:
			v.list = append(v.list[:i], v.list[i+1:]...)
			// do not advance i: the next element has shifted into place
		default:
			return visits, fmt.Errorf("data: unknown for-each command %d", cmd)
		}
	}
	return visits, nil
}

// ListForEachConst walks the list without permitting mutation. Delete
// is illegal here and is reported as a panic, matching the source's
// treatment of a programming error rather than a runtime condition.
func (v *Value) ListForEachConst(f func(i int, child *Value) ForEachCmd) (int, error) {
	if v.kind != KindList {
		return 0, &ErrWrongType{Want: KindList, Have: v.kind}
	}
	visits := 0
	for i, child := range v.list {
		cmd := f(i, child)
		visits++
		switch cmd {
		case Cont:
			continue
		case Stop:
			return visits, nil
		case Fail:
			return -visits, nil
		case Delete:
			panic("tree: Delete is illegal during const iteration")
		default:
			return visits, fmt.Errorf("data: unknown for-each command %d", cmd)
		}
	}
	return visits, nil
}

// DictForEach walks the dict in insertion order, allowing Delete of the
// current entry.
func (v *Value) DictForEach(f func(key string, child *Value) ForEachCmd) (int, error) {
	if v.kind != KindDict {
		return 0, &ErrWrongType{Want: KindDict, Have: v.kind}
	}
	visits := 0
	i := 0
	for i < len(v.dict.entries) {
		e := v.dict.entries[i]
		cmd := f(e.key, e.val)
		visits++
		switch cmd {
		case Cont:
			i++
		case Stop:
			return visits, nil
		case Fail:
			return -visits, nil
		case Delete:
			v.dict.removeAt(i)
		default:
			return visits, fmt.Errorf("data: unknown for-each command %d", cmd)
		}
	}
	return visits, nil
}

// DictForEachConst walks the dict without permitting mutation.
func (v *Value) DictForEachConst(f func(key string, child *Value) ForEachCmd) (int, error) {
	if v.kind != KindDict {
		return 0, &ErrWrongType{Want: KindDict, Have: v.kind}
	}
	visits := 0
	for _, e := range v.dict.entries {
		cmd := f(e.key, e.val)
		visits++
		switch cmd {
		case Cont:
			continue
		case Stop:
			return visits, nil
		case Fail:
			return -visits, nil
		case Delete:
			panic("tree: Delete is illegal during const iteration")
		default:
			return visits, fmt.Errorf("data: unknown for-each command %d", cmd)
		}
	}
	return visits, nil
}

// DictKeyGet returns the child at key, if present.
func (v *Value) DictKeyGet(key string) (*Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.dict.get(key)
}

// DictKeySet returns the existing child at key, or appends a new null
// child and returns it. It is idempotent: two calls with the same key
// return the same node and never duplicate the key.
func (v *Value) DictKeySet(key string) (*Value, error) {
	if key == "" {
		return nil, fmt.Errorf("data: dict keys must be non-empty")
	}
	if v.kind != KindDict {
		return nil, &ErrWrongType{Want: KindDict, Have: v.kind}
	}
	if child, ok := v.dict.get(key); ok {
		return child, nil
	}
	child := New()
	v.dict.set(key, child)
	return child, nil
}

// DictKeyUnset removes key, reporting whether it was present.
func (v *Value) DictKeyUnset(key string) bool {
	if v.kind != KindDict {
		return false
	}
	return v.dict.remove(key)
}

// DictLen returns the number of dict entries, or 0 if not a dict.
func (v *Value) DictLen() int {
	if v.kind != KindDict {
		return 0
	}
	return len(v.dict.entries)
}

// Copy returns a deep copy of v; no sub-tree is shared with the original.
func (v *Value) Copy() *Value {
	switch v.kind {
	case KindList:
		out := NewList()
		for _, c := range v.list {
			out.list = append(out.list, c.Copy())
		}
		return out
	case KindDict:
		out := NewDict()
		for _, e := range v.dict.entries {
			out.dict.set(e.key, e.val.Copy())
		}
		return out
	default:
		cp := *v
		return &cp
	}
}

// ResolvePath walks a slash-separated path of dict keys starting at v,
// returning the leaf or reporting not-found. Intermediate segments that
// are not dicts terminate the walk as not-found.
func ResolvePath(v *Value, path string) (*Value, bool) {
	cur := v
	for _, seg := range splitPath(path) {
		if cur.kind != KindDict {
			return nil, false
		}
		child, ok := cur.dict.get(seg)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// DefinePath walks/creates a slash-separated path of dicts starting at
// v, returning the leaf (freshly null if it did not already exist). It
// rejects a conflict where an intermediate segment is neither Dict nor
// Null.
func DefinePath(v *Value, path string) (*Value, error) {
	cur := v
	segs := splitPath(path)
	for i, seg := range segs {
		switch cur.kind {
		case KindNull:
			cur.SetDict()
		case KindDict:
			// fine
		default:
			return nil, fmt.Errorf("data: path segment %q conflicts with existing %s", strings.Join(segs[:i], "/"), cur.kind)
		}
		child, err := cur.DictKeySet(seg)
		if err != nil {
			return nil, err
		}
		cur = child
	}
	return cur, nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(strings.Trim(path, "/"), "/")
}

// doubleEqualTolerance is the fuzzy-equality epsilon used when comparing
// two Double leaves.
const doubleEqualTolerance = 1e-9

// Equal reports deep equality: dicts compare by key set (order
// insensitive), lists compare positionally, doubles use a fuzzy
// tolerance, strings compare bytewise.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt64:
		return a.i == b.i
	case KindDouble:
		if math.IsNaN(a.d) || math.IsNaN(b.d) {
			return math.IsNaN(a.d) && math.IsNaN(b.d)
		}
		return math.Abs(a.d-b.d) <= doubleEqualTolerance
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(a.dict.entries) != len(b.dict.entries) {
			return false
		}
		for _, e := range a.dict.entries {
			other, ok := b.dict.get(e.key)
			if !ok || !Equal(e.val, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Match performs the same comparison as Equal but treats any leaf in
// mask that is null as a wildcard accepting any value at that position,
// and (for dicts) restricts the comparison to keys present in mask.
// mask == nil is equivalent to exact Equal.
func Match(a, b, mask *Value) bool {
	if mask == nil {
		return Equal(a, b)
	}
	if mask.kind == KindNull {
		return true
	}
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindDict:
		if mask.kind != KindDict {
			return Equal(a, b)
		}
		for _, me := range mask.dict.entries {
			av, aok := a.dict.get(me.key)
			bv, bok := b.dict.get(me.key)
			if !aok || !bok {
				return false
			}
			if !Match(av, bv, me.val) {
				return false
			}
		}
		return true
	case KindList:
		if mask.kind != KindList || len(mask.list) != len(a.list) || len(a.list) != len(b.list) {
			return Equal(a, b)
		}
		for i := range a.list {
			if !Match(a.list[i], b.list[i], mask.list[i]) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

var (
	reTrueBool  = regexp.MustCompile(`^(?i:y(|es)|t(rue|)|on)$`)
	reFalseBool = regexp.MustCompile(`^(?i:n(|o)|f(|alse)|off)$`)
	reInt       = regexp.MustCompile(`^[+-]?[0-9]+$`)
	reFloat     = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]*([eE][+-]?[0-9]+)?$`)
	reNull      = regexp.MustCompile(`^(~|null)$`)
)

// Convert attempts a reversible promotion of v to target per the
// YAML-1.1-style string-matching rules. Lists and Dicts are never
// coerced. target == KindNull with a source other than Null/String
// returns an error; to implement the "probe Bool, Int64, Double, then
// leave as String" behavior for an unspecified target, use ConvertAuto.
func Convert(v *Value, target Kind) (*Value, error) {
	if v.kind == KindList || v.kind == KindDict {
		return nil, fmt.Errorf("data: cannot convert %s", v.kind)
	}
	if v.kind == target {
		return v.Copy(), nil
	}
	switch v.kind {
	case KindNull:
		switch target {
		case KindBool:
			return NewBool(false), nil
		case KindString:
			return NewString("null"), nil
		}
	case KindBool:
		switch target {
		case KindInt64:
			return nil, fmt.Errorf("data: bool has no int64 conversion")
		case KindString:
			if v.b {
				return NewString("true"), nil
			}
			return NewString("false"), nil
		}
	case KindInt64:
		switch target {
		case KindBool:
			return NewBool(v.i != 0), nil
		case KindString:
			return NewString(strconv.FormatInt(v.i, 10)), nil
		}
	case KindDouble:
		switch target {
		case KindBool:
			return NewBool(v.d != 0), nil
		case KindString:
			return NewString(strconv.FormatFloat(v.d, 'f', -1, 64)), nil
		}
	case KindString:
		switch target {
		case KindBool:
			// An explicit target=Bool is a forced conversion (the
			// source's _convert_data_force_bool): anything not
			// recognized as true/false still becomes a bool, non-empty
			// strings being true. ConvertAuto needs the strict
			// match-or-fail behavior instead and uses
			// convertStringToBoolStrict directly rather than this case.
			if reTrueBool.MatchString(v.s) {
				return NewBool(true), nil
			}
			if reFalseBool.MatchString(v.s) {
				return NewBool(false), nil
			}
			return NewBool(v.s != ""), nil
		case KindInt64:
			if !reInt.MatchString(v.s) {
				return nil, fmt.Errorf("data: %q is not a valid int64", v.s)
			}
			n, err := strconv.ParseInt(v.s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("data: %q is not a valid int64: %w", v.s, err)
			}
			return NewInt64(n), nil
		case KindDouble:
			if !reFloat.MatchString(v.s) {
				return nil, fmt.Errorf("data: %q is not a valid double", v.s)
			}
			f, err := strconv.ParseFloat(v.s, 64)
			if err != nil {
				return nil, fmt.Errorf("data: %q is not a valid double: %w", v.s, err)
			}
			return NewDouble(f), nil
		case KindNull:
			if reNull.MatchString(v.s) {
				return New(), nil
			}
			return nil, fmt.Errorf("data: %q is not a valid null", v.s)
		}
	}
	return nil, fmt.Errorf("data: no conversion from %s to %s", v.kind, target)
}

// convertStringToBoolStrict mirrors the source's _convert_data_bool:
// unlike Convert(_, KindBool)'s forced conversion, a string matching
// neither the true nor the false pattern is an error, not a truthy
// default. ConvertAuto's probe loop needs this strict match so a
// numeric or otherwise-typed string survives to the Int64/Double
// probes instead of being swallowed here.
func convertStringToBoolStrict(s string) (*Value, error) {
	if reTrueBool.MatchString(s) {
		return NewBool(true), nil
	}
	if reFalseBool.MatchString(s) {
		return NewBool(false), nil
	}
	return nil, fmt.Errorf("data: %q is not a valid bool", s)
}

// ConvertAuto implements the target=NONE rule: try Null, Bool, Int64,
// Double in that order and fall back to leaving the value as String.
func ConvertAuto(v *Value) *Value {
	if v.kind != KindString {
		return v.Copy()
	}
	if out, err := Convert(v, KindNull); err == nil {
		return out
	}
	if out, err := convertStringToBoolStrict(v.s); err == nil {
		return out
	}
	for _, k := range []Kind{KindInt64, KindDouble} {
		if out, err := Convert(v, k); err == nil {
			return out
		}
	}
	return v.Copy()
}

// ConvertTree recursively applies Convert to every primitive leaf of v,
// leaving List/Dict structure untouched (and never attempting to
// coerce a List or Dict node itself).
func ConvertTree(v *Value, target Kind) {
	switch v.kind {
	case KindList:
		for _, c := range v.list {
			ConvertTree(c, target)
		}
	case KindDict:
		for _, e := range v.dict.entries {
			ConvertTree(e.val, target)
		}
	default:
		if out, err := Convert(v, target); err == nil {
			*v = *out
		}
	}
}
