package json

import (
	"strconv"
	"strings"

	"slurmrestd/internal/tree"
	"slurmrestd/internal/utf8x"
)

// Parse decodes a UTF-8 JSON document into a data tree node. It rejects
// UTF-16/32 byte-order marks and any non-UTF-8 input upfront, consumes
// an optional UTF-8 BOM silently, and enforces the 50-level nesting
// limit. A single top-level scalar is a valid document.
func Parse(data []byte) (*tree.Value, error) {
	if enc, n := utf8x.DetectBOM(data); enc != utf8x.EncodingUTF8 && enc != utf8x.EncodingUnknown {
		return nil, bomSchemaError(enc, n)
	} else if enc == utf8x.EncodingUTF8 {
		data = data[n:]
	}

	s := newScanner(data)
	if err := s.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	if s.eof() {
		return tree.New(), nil
	}
	v, err := parseValue(s, 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func bomSchemaError(enc utf8x.Encoding, n int) error {
	switch enc {
	case utf8x.EncodingUTF16BE:
		return newErr(ErrUTF16BESchema, 1, 1, 0, "UTF-16BE BOM not supported")
	case utf8x.EncodingUTF16LE:
		return newErr(ErrUTF16LESchema, 1, 1, 0, "UTF-16LE BOM not supported")
	case utf8x.EncodingUTF32BE:
		return newErr(ErrUTF32BESchema, 1, 1, 0, "UTF-32BE BOM not supported")
	case utf8x.EncodingUTF32LE:
		return newErr(ErrUTF32LESchema, 1, 1, 0, "UTF-32LE BOM not supported")
	default:
		return newErr(ErrUnknownEncoding, 1, 1, 0, "unrecognized byte-order mark")
	}
}

func parseValue(s *scanner, depth int) (*tree.Value, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	r, _, err := s.peek()
	if err != nil {
		return nil, err
	}
	if (r == '{' || r == '[') && depth >= MaxDepth {
		return nil, newErr(ErrParseDepthMax, s.line, s.col, r, "nesting exceeds 50 levels")
	}
	switch r {
	case 0:
		return nil, newErr(ErrIllegalTermination, s.line, s.col, 0, "unexpected end of input")
	case '{':
		return parseObject(s, depth+1)
	case '[':
		return parseArray(s, depth+1)
	case '"':
		str, err := parseQuotedString(s)
		if err != nil {
			return nil, err
		}
		return tree.NewString(str), nil
	case '}':
		return nil, newErr(ErrUnexpectedDictionaryEnd, s.line, s.col, r, "")
	case ']':
		return nil, newErr(ErrUnexpectedListEnd, s.line, s.col, r, "")
	case ',':
		return nil, newErr(ErrUnexpectedComma, s.line, s.col, r, "")
	case ':':
		return nil, newErr(ErrInvalidChar, s.line, s.col, r, "unexpected colon")
	default:
		return parseBareword(s)
	}
}

func parseObject(s *scanner, depth int) (*tree.Value, error) {
	startLine, startCol := s.line, s.col
	s.next() // consume '{'
	d := tree.NewDict()

	if err := s.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	r, _, err := s.peek()
	if err != nil {
		return nil, err
	}
	if r == '}' {
		s.next()
		return d, nil
	}

	for {
		if err := s.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if s.eof() {
			return nil, newErr(ErrUnclosedDictionary, startLine, startCol, 0, "")
		}
		r, _, err := s.peek()
		if err != nil {
			return nil, err
		}
		var key string
		switch {
		case r == '"':
			key, err = parseQuotedString(s)
			if err != nil {
				return nil, err
			}
		case r == '}':
			return nil, newErr(ErrIncompleteDictionaryKey, s.line, s.col, r, "trailing comma before }")
		default:
			key, err = parseBarewordKey(s)
			if err != nil {
				return nil, err
			}
		}
		if key == "" {
			return nil, newErr(ErrInvalidDictionaryKey, s.line, s.col, 0, "empty key")
		}

		if err := s.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		r, _, err = s.peek()
		if err != nil {
			return nil, err
		}
		if r != ':' {
			return nil, newErr(ErrInvalidDictionaryColon, s.line, s.col, r, "expected ':'")
		}
		s.next()

		child, err := parseValue(s, depth)
		if err != nil {
			return nil, err
		}
		set, err := d.DictKeySet(key)
		if err != nil {
			return nil, err
		}
		*set = *child

		if err := s.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		r, _, err = s.peek()
		if err != nil {
			return nil, err
		}
		switch r {
		case ',':
			s.next()
			if err := s.skipWhitespaceAndComments(); err != nil {
				return nil, err
			}
			if rr, _, _ := s.peek(); rr == '}' {
				return nil, newErr(ErrUnexpectedDictionaryEnd, s.line, s.col, rr, "trailing comma")
			}
			continue
		case '}':
			s.next()
			return d, nil
		case 0:
			return nil, newErr(ErrUnclosedDictionary, startLine, startCol, 0, "")
		default:
			return nil, newErr(ErrInvalidChar, s.line, s.col, r, "expected ',' or '}'")
		}
	}
}

func parseArray(s *scanner, depth int) (*tree.Value, error) {
	startLine, startCol := s.line, s.col
	s.next() // consume '['
	l := tree.NewList()

	if err := s.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	r, _, err := s.peek()
	if err != nil {
		return nil, err
	}
	if r == ']' {
		s.next()
		return l, nil
	}

	for {
		child, err := parseValue(s, depth)
		if err != nil {
			return nil, err
		}
		l.ListAppend(child)

		if err := s.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		r, _, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch r {
		case ',':
			s.next()
			if err := s.skipWhitespaceAndComments(); err != nil {
				return nil, err
			}
			if rr, _, _ := s.peek(); rr == ']' {
				return nil, newErr(ErrUnexpectedListEnd, s.line, s.col, rr, "trailing comma")
			}
			continue
		case ']':
			s.next()
			return l, nil
		case 0:
			return nil, newErr(ErrUnclosedList, startLine, startCol, 0, "")
		default:
			return nil, newErr(ErrInvalidChar, s.line, s.col, r, "expected ',' or ']'")
		}
	}
}

func parseQuotedString(s *scanner) (string, error) {
	startLine, startCol := s.line, s.col
	s.next() // consume opening quote
	var b strings.Builder
	for {
		if s.eof() {
			return "", newErr(ErrUnclosedQuotedString, startLine, startCol, 0, "")
		}
		r, n, err := s.peek()
		if err != nil {
			return "", err
		}
		if r == '"' {
			s.advance(r, n)
			return b.String(), nil
		}
		if r == '\\' {
			s.advance(r, n)
			decoded, err := parseEscape(s)
			if err != nil {
				return "", err
			}
			b.WriteRune(decoded)
			continue
		}
		if utf8x.IsNewline(r) {
			return "", newErr(ErrUnclosedQuotedString, startLine, startCol, r, "raw newline in string")
		}
		s.advance(r, n)
		b.WriteRune(r)
	}
}

func parseEscape(s *scanner) (rune, error) {
	if s.eof() {
		return 0, newErr(ErrInvalidEscaped, s.line, s.col, 0, "truncated escape")
	}
	r, _, err := s.peek()
	if err != nil {
		return 0, err
	}
	switch r {
	case '"':
		s.next()
		return '"', nil
	case '\\':
		s.next()
		return '\\', nil
	case '/':
		s.next()
		return '/', nil
	case 'b':
		s.next()
		return '\b', nil
	case 'f':
		s.next()
		return '\f', nil
	case 'n':
		s.next()
		return '\n', nil
	case 'r':
		s.next()
		return '\r', nil
	case 't':
		s.next()
		return '\t', nil
	case 'u':
		s.next()
		return parseUnicodeEscape(s)
	default:
		return 0, newErr(ErrInvalidEscaped, s.line, s.col, r, "unrecognized escape")
	}
}

// parseUnicodeEscape accepts 4-6 hex digits, a deviation from strict
// JSON's fixed 4-digit \uXXXX the source's grammar also tolerates (spec
// §4.C, §9). A high surrogate directly followed by a second \uXXXX low
// surrogate is combined into the represented supplementary codepoint;
// an unpaired surrogate is rejected.
func parseUnicodeEscape(s *scanner) (rune, error) {
	hi, err := readHexDigits(s)
	if err != nil {
		return 0, err
	}
	if hi >= 0xD800 && hi <= 0xDBFF {
		if s.pos+1 < len(s.data) && s.data[s.pos] == '\\' && s.data[s.pos+1] == 'u' {
			save := *s
			s.next()
			s.next()
			lo, err := readHexDigits(s)
			if err == nil && lo >= 0xDC00 && lo <= 0xDFFF {
				combined := 0x10000 + (hi-0xD800)<<10 + (lo - 0xDC00)
				return rune(combined), nil
			}
			*s = save
		}
		return 0, newErr(ErrSurrogateCode, s.line, s.col, rune(hi), "unpaired high surrogate")
	}
	if hi >= 0xDC00 && hi <= 0xDFFF {
		return 0, newErr(ErrSurrogateCode, s.line, s.col, rune(hi), "unpaired low surrogate")
	}
	if !utf8x.IsValid(rune(hi)) {
		return 0, newErr(ErrInvalidEscaped, s.line, s.col, rune(hi), "disallowed escaped codepoint")
	}
	return rune(hi), nil
}

func readHexDigits(s *scanner) (int, error) {
	var digits []byte
	for len(digits) < 6 {
		if s.eof() {
			break
		}
		c := s.data[s.pos]
		if !isHex(c) {
			break
		}
		digits = append(digits, c)
		s.pos++
		s.col++
	}
	if len(digits) < 4 {
		return 0, newErr(ErrInvalidEscaped, s.line, s.col, 0, "expected at least 4 hex digits")
	}
	v, err := strconv.ParseInt(string(digits), 16, 32)
	if err != nil {
		return 0, newErr(ErrInvalidEscaped, s.line, s.col, 0, "malformed hex escape")
	}
	return int(v), nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isStructural(r rune) bool {
	switch r {
	case '{', '}', '[', ']', ',', ':', '"':
		return true
	}
	return false
}

func parseBarewordKey(s *scanner) (string, error) {
	var b strings.Builder
	startLine, startCol := s.line, s.col
	for {
		r, n, err := s.peek()
		if err != nil {
			return "", err
		}
		if n == 0 || utf8x.IsWhitespace(r) || isStructural(r) {
			break
		}
		s.advance(r, n)
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "", newErr(ErrInvalidDictionaryKey, startLine, startCol, 0, "")
	}
	return b.String(), nil
}

func parseBareword(s *scanner) (*tree.Value, error) {
	startLine, startCol := s.line, s.col
	var b strings.Builder
	for {
		r, n, err := s.peek()
		if err != nil {
			return nil, err
		}
		if n == 0 || utf8x.IsWhitespace(r) || isStructural(r) {
			break
		}
		s.advance(r, n)
		b.WriteRune(r)
	}
	tok := b.String()
	if tok == "" {
		r, _, _ := s.peek()
		return nil, newErr(ErrInvalidChar, startLine, startCol, r, "empty token")
	}

	switch tok {
	case "null":
		return tree.New(), nil
	case "true":
		return tree.NewBool(true), nil
	case "false":
		return tree.NewBool(false), nil
	case "Infinity":
		return tree.NewDouble(posInf), nil
	case "-Infinity":
		return tree.NewDouble(negInf), nil
	case "NaN":
		return tree.NewDouble(nan), nil
	case "-NaN":
		return tree.NewDouble(nan), nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return tree.NewInt64(n), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return tree.NewDouble(f), nil
	}
	// Falls through to the same auto-classification ConvertAuto applies
	// to unquoted scalars, per spec.md §4.C.
	return tree.ConvertAuto(tree.NewString(tok)), nil
}
