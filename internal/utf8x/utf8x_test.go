package utf8x

import "testing"

func TestIsValidRejectsDisallowed(t *testing.T) {
	disallowed := []rune{
		0x0000,
		0xD800, 0xDFFF, // surrogate halves
		0xE000, 0xF8FF, // private use
		0xF0000, 0xFFFFD,
		0x100000, 0x10FFFD,
		0xFDD0, 0xFDEF, // noncharacters block
		0xFFFE, 0xFFFF, // plane 0 noncharacters
		0x1FFFE, 0x1FFFF, // plane 1 noncharacters
		0xFFF0, 0xFFF8, // reserved
	}
	for _, r := range disallowed {
		if IsValid(r) {
			t.Errorf("IsValid(U+%04X) = true, want false", r)
		}
	}
}

func TestIsValidAcceptsCanonicalSample(t *testing.T) {
	allowed := []rune{'A', '0', ' ', 0x00FF, 0x1F600, 0xEFFFD}
	for _, r := range allowed {
		if !IsValid(r) {
			t.Errorf("IsValid(U+%04X) = false, want true", r)
		}
	}
}

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name string
		src  []byte
		want Encoding
		len  int
	}{
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'x'}, EncodingUTF8, 3},
		{"utf16le", []byte{0xFF, 0xFE, 'x'}, EncodingUTF16LE, 2},
		{"utf16be", []byte{0xFE, 0xFF, 'x'}, EncodingUTF16BE, 2},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00}, EncodingUTF32LE, 4},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF}, EncodingUTF32BE, 4},
		{"none", []byte("hello"), EncodingUnknown, 0},
	}
	for _, c := range cases {
		enc, n := DetectBOM(c.src)
		if enc != c.want || n != c.len {
			t.Errorf("%s: DetectBOM() = (%v,%d), want (%v,%d)", c.name, enc, n, c.want, c.len)
		}
	}
}

func TestReadScalarRejectsInvalidByte(t *testing.T) {
	if _, _, err := ReadScalar([]byte{0xFF}); err == nil {
		t.Fatalf("expected error decoding invalid byte")
	}
}

func TestLoggableReplacesControls(t *testing.T) {
	got := Loggable("a\x01b")
	want := "a␁b"
	if got != want {
		t.Fatalf("Loggable() = %q, want %q", got, want)
	}
}

func TestValidateStringRejectsNUL(t *testing.T) {
	if err := ValidateString("a\x00b"); err == nil {
		t.Fatalf("expected ValidateString to reject embedded NUL")
	}
}
