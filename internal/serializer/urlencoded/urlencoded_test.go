package urlencoded

import "testing"

func TestParseBasicPairs(t *testing.T) {
	v, err := Parse([]byte("name=alice&age=30&active=true"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	name, _ := v.DictKeyGet("name")
	s, _ := name.String()
	if s != "alice" {
		t.Fatalf("expected alice, got %q", s)
	}
	age, _ := v.DictKeyGet("age")
	n, err := age.Int64()
	if err != nil || n != 30 {
		t.Fatalf("expected age=30 int64, got %v (%v)", n, err)
	}
	active, _ := v.DictKeyGet("active")
	b, err := active.Bool()
	if err != nil || !b {
		t.Fatalf("expected active=true bool, got %v (%v)", b, err)
	}
}

func TestParseSemicolonSeparator(t *testing.T) {
	v, err := Parse([]byte("a=1;b=2"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.DictLen() != 2 {
		t.Fatalf("expected 2 keys, got %d", v.DictLen())
	}
}

func TestParsePlusDecodesToSpace(t *testing.T) {
	v, err := Parse([]byte("name=john+smith"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	name, _ := v.DictKeyGet("name")
	s, _ := name.String()
	if s != "john smith" {
		t.Fatalf("expected 'john smith', got %q", s)
	}
}

func TestParsePercentDecoding(t *testing.T) {
	v, err := Parse([]byte("q=a%2Bb%20c"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	q, _ := v.DictKeyGet("q")
	s, _ := q.String()
	if s != "a+b c" {
		t.Fatalf("expected 'a+b c', got %q", s)
	}
}

func TestParseBareEqualsIsError(t *testing.T) {
	if _, err := Parse([]byte("=value")); err == nil {
		t.Fatalf("expected error for bare '=' before key")
	}
	if _, err := Parse([]byte("key=a=b")); err == nil {
		t.Fatalf("expected error for extra '=' in value")
	}
}

func TestParseMissingEqualsIsError(t *testing.T) {
	if _, err := Parse([]byte("keyonly")); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestParseUnescapedUnreservedCharIsError(t *testing.T) {
	if _, err := Parse([]byte("a=foo bar")); err == nil {
		t.Fatalf("expected error for raw unescaped space")
	}
}

func TestParseEmptyBodyYieldsEmptyDict(t *testing.T) {
	v, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.DictLen() != 0 {
		t.Fatalf("expected empty dict, got %d keys", v.DictLen())
	}
}

func TestEmitNotSupported(t *testing.T) {
	if _, err := Emit(nil); err != ErrSerializeNotSupported {
		t.Fatalf("expected ErrSerializeNotSupported, got %v", err)
	}
}
