package json

import "fmt"

// ErrorCode enumerates the parser's error taxonomy, preserved verbatim
// from the wire contract so existing clients keep recognizing them.
type ErrorCode string

const (
	ErrInvalidChar       ErrorCode = "INVALID_CHAR"
	ErrInvalidEscaped    ErrorCode = "INVALID_ESCAPED"
	ErrInvalidRead       ErrorCode = "INVALID_READ"
	ErrIllegalTermination ErrorCode = "ILLEGAL_TERMINATION"
	ErrInvalidByteN      ErrorCode = "INVALID_BYTE_N"

	ErrUnexpectedQuotes         ErrorCode = "UNEXPECTED_QUOTES"
	ErrUnexpectedList           ErrorCode = "UNEXPECTED_LIST"
	ErrUnexpectedListEnd        ErrorCode = "UNEXPECTED_LIST_END"
	ErrUnexpectedDictionary     ErrorCode = "UNEXPECTED_DICTIONARY"
	ErrUnexpectedDictionaryEnd  ErrorCode = "UNEXPECTED_DICTIONARY_END"
	ErrUnexpectedComma          ErrorCode = "UNEXPECTED_COMMA"
	ErrUnexpectedQuotedString   ErrorCode = "UNEXPECTED_QUOTED_STRING"
	ErrUnexpectedUnquotedString ErrorCode = "UNEXPECTED_UNQUOTED_STRING"

	ErrInvalidDictionaryKey      ErrorCode = "INVALID_DICTIONARY_KEY"
	ErrInvalidDictionaryColon    ErrorCode = "INVALID_DICTIONARY_COLON"
	ErrIncompleteDictionaryKey   ErrorCode = "INCOMPLETE_DICTIONARY_KEY"

	ErrUnclosedQuotedString ErrorCode = "UNCLOSED_QUOTED_STRING"
	ErrUnclosedDictionary   ErrorCode = "UNCLOSED_DICTIONARY"
	ErrUnclosedList         ErrorCode = "UNCLOSED_LIST"

	ErrNullCode        ErrorCode = "NULL_CODE"
	ErrSurrogateCode   ErrorCode = "SURROGATE_CODE"
	ErrPrivateCode     ErrorCode = "PRIVATE_CODE"
	ErrNoncharacterCode ErrorCode = "NONCHARACTER_CODE"
	ErrReservedCode    ErrorCode = "RESERVED_CODE"

	ErrParseDepthMin ErrorCode = "PARSE_DEPTH_MIN"
	ErrParseDepthMax ErrorCode = "PARSE_DEPTH_MAX"

	ErrUTF16LESchema    ErrorCode = "UTF16LE_SCHEMA"
	ErrUTF16BESchema    ErrorCode = "UTF16BE_SCHEMA"
	ErrUTF32LESchema    ErrorCode = "UTF32LE_SCHEMA"
	ErrUTF32BESchema    ErrorCode = "UTF32BE_SCHEMA"
	ErrUnknownEncoding  ErrorCode = "UNKNOWN_ENCODING"
)

// MaxDepth is the hard recursion limit for nested containers (spec
// §4.C / §8: depth 50 is accepted, 51 fails).
const MaxDepth = 50

// ParseError carries the offending code, its source position, and the
// codepoint involved (0 if not applicable).
type ParseError struct {
	Code   ErrorCode
	Line   int
	Column int
	Rune   rune
	detail string
}

func (e *ParseError) Error() string {
	if e.Rune != 0 {
		return fmt.Sprintf("json: %s at %d:%d (U+%04X)%s", e.Code, e.Line, e.Column, e.Rune, e.detailSuffix())
	}
	return fmt.Sprintf("json: %s at %d:%d%s", e.Code, e.Line, e.Column, e.detailSuffix())
}

func (e *ParseError) detailSuffix() string {
	if e.detail == "" {
		return ""
	}
	return ": " + e.detail
}

func newErr(code ErrorCode, line, col int, r rune, detail string) *ParseError {
	return &ParseError{Code: code, Line: line, Column: col, Rune: r, detail: detail}
}
