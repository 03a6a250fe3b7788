package json

import (
	"strings"
	"testing"

	"slurmrestd/internal/tree"
)

func TestParseEmitRoundTrip(t *testing.T) {
	src := `{"name":"alice","age":30,"tags":["a","b"],"active":true,"meta":null}`
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Emit(v, Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	v2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if !tree.Equal(v, v2) {
		t.Fatalf("round trip not deep-equal")
	}
}

func TestParseConsumesUTF8BOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...)
	v, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := v.DictKeyGet("a")
	got, _ := n.Int64()
	if got != 1 {
		t.Fatalf("expected a=1, got %v", got)
	}
}

func TestParseRejectsUTF16LEBOM(t *testing.T) {
	src := []byte{0xFF, 0xFE, '{', 0, '}', 0}
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected error for UTF-16LE BOM")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Code != ErrUTF16LESchema {
		t.Fatalf("expected ErrUTF16LESchema, got %v", err)
	}
}

func TestParseDepthLimit(t *testing.T) {
	ok := strings.Repeat("[", 50) + strings.Repeat("]", 50)
	if _, err := Parse([]byte(ok)); err != nil {
		t.Fatalf("depth 50 should parse, got %v", err)
	}

	tooDeep := strings.Repeat("[", 51) + strings.Repeat("]", 51)
	_, err := Parse([]byte(tooDeep))
	if err == nil {
		t.Fatalf("expected depth-exceeded error")
	}
	pe, ok2 := err.(*ParseError)
	if !ok2 || pe.Code != ErrParseDepthMax {
		t.Fatalf("expected ErrParseDepthMax, got %v", err)
	}
}

func TestParseTrailingCommaIsError(t *testing.T) {
	if _, err := Parse([]byte(`[1,2,]`)); err == nil {
		t.Fatalf("expected error for trailing comma in list")
	}
	if _, err := Parse([]byte(`{"a":1,}`)); err == nil {
		t.Fatalf("expected error for trailing comma in dict")
	}
}

func TestParseNonFiniteDoubles(t *testing.T) {
	v, err := Parse([]byte(`[Infinity,-Infinity,NaN]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	elems, _ := v.List()
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements")
	}
	d0, _ := elems[0].Double()
	if d0 != posInf {
		t.Fatalf("expected +Inf")
	}
}

func TestEmitNonFiniteBareByDefault(t *testing.T) {
	out, err := Emit(tree.NewDouble(posInf), Options{OmitBOM: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if string(out) != "Infinity" {
		t.Fatalf("expected bare Infinity, got %q", out)
	}
}

func TestEmitNonFiniteRejected(t *testing.T) {
	out, err := Emit(tree.NewDouble(nan), Options{OmitBOM: true, RejectNonFinite: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("expected null, got %q", out)
	}
}

// highCodepoint is a rune above U+007F, built numerically to avoid
// embedding a literal escape sequence that source editors sometimes
// mangle.
var highCodepoint = rune(0xE9)

func TestEmitHighCodepointEscaped(t *testing.T) {
	s := "caf" + string(highCodepoint)
	out, err := Emit(tree.NewString(s), Options{OmitBOM: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	// The codepoint must not appear verbatim in the emitted bytes; it
	// must have been escaped.
	if strings.Contains(string(out), string(highCodepoint)) {
		t.Fatalf("expected codepoint to be escaped, got %q", out)
	}
	// And the escaped form must round-trip back through Parse.
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	got, _ := back.String()
	if got != s {
		t.Fatalf("round trip mismatch: got %q want %q", got, s)
	}
}

func TestParseEscapedSupplementaryCodepoint(t *testing.T) {
	want := rune(0x1F600)
	out, err := Emit(tree.NewString(string(want)), Options{OmitBOM: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, _ := back.String()
	if got != string(want) {
		t.Fatalf("unexpected decode: %q", got)
	}
}

func TestEmitOutputBeginsWithBOM(t *testing.T) {
	out, err := Emit(tree.New(), Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(out) < 3 || out[0] != 0xEF || out[1] != 0xBB || out[2] != 0xBF {
		t.Fatalf("expected leading UTF-8 BOM, got %v", out[:3])
	}
}

func TestParseSingleTopLevelScalar(t *testing.T) {
	v, err := Parse([]byte(`42`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := v.Int64()
	if n != 42 {
		t.Fatalf("expected 42, got %v", n)
	}
}

func TestParseComments(t *testing.T) {
	src := `{
		// a comment
		"a": 1, /* inline */ "b": 2
	}`
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.DictLen() != 2 {
		t.Fatalf("expected 2 keys, got %d", v.DictLen())
	}
}
