// Package utf8x provides the UTF-8 scalar validation and classification
// primitives the JSON codec is built on. Go's stdlib unicode/utf8
// decodes overlong/surrogate sequences as invalid already, but it does
// not reject the wider disallowed-codepoint ranges (private-use,
// noncharacters, reserved) spec.md §4.B requires; this package layers
// those rules on top rather than trusting utf8.DecodeRune alone, per
// spec.md §9's "MUST NOT fall back to the standard-library string type
// ... if it does not enforce well-formed UTF-8" guidance.
package utf8x

import (
	"fmt"
	"unicode/utf8"
)

// Encoding identifies a byte-order-mark-detected encoding scheme.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingUTF8
	EncodingUTF16BE
	EncodingUTF16LE
	EncodingUTF32BE
	EncodingUTF32LE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16BE:
		return "utf-16be"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF32BE:
		return "utf-32be"
	case EncodingUTF32LE:
		return "utf-32le"
	default:
		return "unknown"
	}
}

// DetectBOM inspects the leading bytes of src for a known byte-order
// mark and reports the detected encoding plus the length of the BOM
// consumed (0 if none found). The UTF-32LE pattern (FF FE 00 00) is
// checked before UTF-16LE (FF FE) since it is the longer match.
func DetectBOM(src []byte) (enc Encoding, bomLen int) {
	switch {
	case hasPrefix(src, 0xEF, 0xBB, 0xBF):
		return EncodingUTF8, 3
	case hasPrefix(src, 0x00, 0x00, 0xFE, 0xFF):
		return EncodingUTF32BE, 4
	case hasPrefix(src, 0xFF, 0xFE, 0x00, 0x00):
		return EncodingUTF32LE, 4
	case hasPrefix(src, 0xFE, 0xFF):
		return EncodingUTF16BE, 2
	case hasPrefix(src, 0xFF, 0xFE):
		return EncodingUTF16LE, 2
	default:
		return EncodingUnknown, 0
	}
}

func hasPrefix(src []byte, want ...byte) bool {
	if len(src) < len(want) {
		return false
	}
	for i, b := range want {
		if src[i] != b {
			return false
		}
	}
	return true
}

// ReadScalar decodes one UTF-8 codepoint from the start of src,
// returning the codepoint, its encoded length in bytes, and an error
// if src begins with an invalid or incomplete sequence, or decodes to
// a disallowed codepoint per IsValid.
func ReadScalar(src []byte) (rune, int, error) {
	if len(src) == 0 {
		return 0, 0, fmt.Errorf("utf8x: empty input")
	}
	r, size := utf8.DecodeRune(src)
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, fmt.Errorf("utf8x: invalid UTF-8 sequence at byte 0x%02x", src[0])
	}
	if !IsValid(r) {
		return r, size, fmt.Errorf("utf8x: disallowed codepoint U+%04X", r)
	}
	return r, size, nil
}

// WriteScalar encodes r as UTF-8 bytes.
func WriteScalar(r rune) ([]byte, error) {
	if !IsValid(r) {
		return nil, fmt.Errorf("utf8x: disallowed codepoint U+%04X", r)
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return buf[:n], nil
}

// IsValid rejects U+0000, UTF-16 surrogate halves, private-use ranges,
// noncharacters (both the FDD0-FDEF block and every plane's trailing
// nFFFE/nFFFF pair), and the FFF0-FFF8 reserved block.
func IsValid(r rune) bool {
	if r < 0 || r > 0x10FFFF {
		return false
	}
	if r == 0x0000 {
		return false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r >= 0xE000 && r <= 0xF8FF {
		return false
	}
	if r >= 0xF0000 && r <= 0xFFFFD {
		return false
	}
	if r >= 0x100000 && r <= 0x10FFFD {
		return false
	}
	if r >= 0xFDD0 && r <= 0xFDEF {
		return false
	}
	if low := r & 0xFFFF; low == 0xFFFE || low == 0xFFFF {
		return false
	}
	if r >= 0xFFF0 && r <= 0xFFF8 {
		return false
	}
	return true
}

// IsSpace reports whether r is an ASCII or Unicode space separator.
// Vertical tab and form feed are counted both here and by IsNewline;
// the other line terminators are left to IsNewline.
func IsSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', 0x00A0, 0x1680, 0x2000, 0x2001, 0x2002,
		0x2003, 0x2004, 0x2005, 0x2006, 0x2007, 0x2008, 0x2009, 0x200A,
		0x202F, 0x205F, 0x3000:
		return true
	}
	return false
}

// IsNewline reports whether r is a line-terminating codepoint.
func IsNewline(r rune) bool {
	switch r {
	case '\n', '\r', 0x0B, 0x0C, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// IsControl reports whether r is a C0/C1 control codepoint.
func IsControl(r rune) bool {
	return (r >= 0x00 && r <= 0x1F) || (r >= 0x7F && r <= 0x9F)
}

// IsWhitespace is the union of IsSpace and IsNewline, used by the JSON
// parser to skip inter-token whitespace.
func IsWhitespace(r rune) bool {
	return IsSpace(r) || IsNewline(r)
}

// controlPictures maps C0 control codes (0x00-0x1F, plus 0x7F) to
// their Unicode Control Pictures block (U+2400-U+2421) equivalent, for
// producing a "loggable" rendering of otherwise-unprintable input.
var controlPictures = func() map[rune]rune {
	m := make(map[rune]rune, 33)
	for c := rune(0x00); c <= 0x1F; c++ {
		m[c] = 0x2400 + c
	}
	m[0x7F] = 0x2421
	return m
}()

// Loggable returns a copy of s with non-printable codepoints replaced:
// C0 controls and DEL become their Control Pictures glyph, and any
// other disallowed/undecodable codepoint becomes U+FFFD.
func Loggable(s string) string {
	out := make([]rune, 0, len(s))
	b := []byte(s)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			out = append(out, 0xFFFD)
			b = b[1:]
			continue
		}
		if pic, ok := controlPictures[r]; ok {
			out = append(out, pic)
		} else if !IsValid(r) {
			out = append(out, 0xFFFD)
		} else {
			out = append(out, r)
		}
		b = b[size:]
	}
	return string(out)
}

// ValidateString decodes every scalar in s, returning an error
// describing the first invalid or disallowed codepoint encountered.
// Callers use this before handing a string to the data tree, since the
// tree itself does not re-validate its String payloads.
func ValidateString(s string) error {
	b := []byte(s)
	offset := 0
	for len(b) > 0 {
		_, n, err := ReadScalar(b)
		if err != nil {
			return fmt.Errorf("utf8x: byte offset %d: %w", offset, err)
		}
		b = b[n:]
		offset += n
	}
	return nil
}
