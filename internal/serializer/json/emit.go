package json

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"slurmrestd/internal/tree"
)

// Options controls emitter behavior.
type Options struct {
	// Pretty selects depth-indexed tab indentation with newlines
	// between entries and ": " between key and value. The zero value
	// is compact (no whitespace).
	Pretty bool
	// RejectNonFinite coerces non-finite doubles to null on emit
	// instead of the source's bare Infinity/-Infinity/NaN/-NaN
	// (spec.md §9 open question; default false preserves source
	// behavior since that is what existing clients already parse).
	RejectNonFinite bool
	// OmitBOM suppresses the leading UTF-8 byte-order mark the source
	// always emits. Internal call sites that concatenate bodies (e.g.
	// logging a payload) set this; the wire-facing emitter does not.
	OmitBOM bool
}

// Emit serializes v per Options. The output begins with a UTF-8 BOM
// unless Options.OmitBOM is set.
func Emit(v *tree.Value, opts Options) ([]byte, error) {
	var b strings.Builder
	if !opts.OmitBOM {
		b.Write([]byte{0xEF, 0xBB, 0xBF})
	}
	if err := emitValue(&b, v, 0, opts); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func emitValue(b *strings.Builder, v *tree.Value, depth int, opts Options) error {
	switch v.Kind() {
	case tree.KindNull:
		b.WriteString("null")
	case tree.KindBool:
		bv, _ := v.Bool()
		if bv {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case tree.KindInt64:
		iv, _ := v.Int64()
		b.WriteString(strconv.FormatInt(iv, 10))
	case tree.KindDouble:
		dv, _ := v.Double()
		emitDouble(b, dv, opts)
	case tree.KindString:
		sv, _ := v.String()
		emitString(b, sv)
	case tree.KindList:
		return emitList(b, v, depth, opts)
	case tree.KindDict:
		return emitDict(b, v, depth, opts)
	}
	return nil
}

func emitDouble(b *strings.Builder, d float64, opts Options) {
	if math.IsInf(d, 1) {
		if opts.RejectNonFinite {
			b.WriteString("null")
		} else {
			b.WriteString("Infinity")
		}
		return
	}
	if math.IsInf(d, -1) {
		if opts.RejectNonFinite {
			b.WriteString("null")
		} else {
			b.WriteString("-Infinity")
		}
		return
	}
	if math.IsNaN(d) {
		if opts.RejectNonFinite {
			b.WriteString("null")
		} else {
			b.WriteString("NaN")
		}
		return
	}
	b.WriteString(strconv.FormatFloat(d, 'e', -1, 64))
}

func emitString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r > 0x7F {
				fmt.Fprintf(b, `\u%06x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

func emitList(b *strings.Builder, v *tree.Value, depth int, opts Options) error {
	elems, _ := v.List()
	if len(elems) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteByte('[')
	for i, child := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNewlineIndent(b, depth+1, opts)
		if err := emitValue(b, child, depth+1, opts); err != nil {
			return err
		}
	}
	writeNewlineIndent(b, depth, opts)
	b.WriteByte(']')
	return nil
}

func emitDict(b *strings.Builder, v *tree.Value, depth int, opts Options) error {
	dv, _ := v.Dict()
	keys := dv.Keys()
	if len(keys) == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNewlineIndent(b, depth+1, opts)
		emitString(b, k)
		b.WriteByte(':')
		if opts.Pretty {
			b.WriteByte(' ')
		}
		child, _ := dv.Get(k)
		if err := emitValue(b, child, depth+1, opts); err != nil {
			return err
		}
	}
	writeNewlineIndent(b, depth, opts)
	b.WriteByte('}')
	return nil
}

func writeNewlineIndent(b *strings.Builder, depth int, opts Options) {
	if !opts.Pretty {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteByte('\t')
	}
}
