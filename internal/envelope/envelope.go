// Package envelope implements the uniform {meta, errors, warnings,
// <payload>} response shape and the resp_error/resp_warn accumulation
// discipline every operation handler uses to report outcomes.
package envelope

import "fmt"

// PluginMeta identifies the serving plugin in the envelope's meta block.
type PluginMeta struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SlurmVersion is the {major,minor,micro} triple advertised in meta.slurm.
type SlurmVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Micro int `json:"micro"`
}

// SlurmMeta identifies the advertised release/version in meta.slurm.
type SlurmMeta struct {
	Release string       `json:"release"`
	Version SlurmVersion `json:"version"`
}

// ClientMeta identifies the authenticated caller in meta.client.
type ClientMeta struct {
	Source string `json:"source"`
	UID    int    `json:"uid"`
	GID    int    `json:"gid"`
}

// Meta is the envelope's meta block, seeded once per request.
type Meta struct {
	Plugin PluginMeta `json:"plugin"`
	Slurm  SlurmMeta  `json:"slurm"`
	Client ClientMeta `json:"client"`
}

// ErrorEntry is one element of the envelope's errors array.
type ErrorEntry struct {
	Description string `json:"description"`
	ErrorNumber Code   `json:"error_number"`
	Error       string `json:"error"`
	Source      string `json:"source"`
}

// WarningEntry is one element of the envelope's warnings array.
type WarningEntry struct {
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Envelope accumulates errors/warnings for a single request and holds
// the result code the framework uses to decide whether to commit.
// Errors and warnings are appended in call order; that order is the
// wire contract (spec.md §4.E).
type Envelope struct {
	Meta     Meta           `json:"meta"`
	Errors   []ErrorEntry   `json:"errors"`
	Warnings []WarningEntry `json:"warnings"`

	resultCode Code
}

// New seeds an envelope's meta block. Errors/Warnings start empty.
func New(meta Meta) *Envelope {
	return &Envelope{
		Meta:     meta,
		Errors:   []ErrorEntry{},
		Warnings: []WarningEntry{},
	}
}

// RespError appends an error entry. If code is non-zero and no prior
// error has set the result code, the envelope's result code becomes
// code. It returns code, mirroring the source's "return resp_error(...)"
// idiom so callers can propagate the failure in one statement.
func (e *Envelope) RespError(code Code, source, format string, args ...any) Code {
	e.Errors = append(e.Errors, ErrorEntry{
		Description: fmt.Sprintf(format, args...),
		ErrorNumber: code,
		Error:       codeName(code),
		Source:      source,
	})
	if code != CodeNone && e.resultCode == CodeNone {
		e.resultCode = code
	}
	return code
}

// RespWarn appends a warning entry. Warnings never affect the result
// code.
func (e *Envelope) RespWarn(source, format string, args ...any) {
	e.Warnings = append(e.Warnings, WarningEntry{
		Description: fmt.Sprintf(format, args...),
		Source:      source,
	})
}

// ResultCode returns the first non-zero code recorded by RespError, or
// CodeNone if every call so far has succeeded.
func (e *Envelope) ResultCode() Code {
	return e.resultCode
}

// OK reports whether the envelope is still free of a recorded error.
func (e *Envelope) OK() bool {
	return e.resultCode == CodeNone
}

var codeNames = map[Code]string{
	CodeNone:                     "",
	CodeRestInvalidQuery:         "ESLURM_REST_INVALID_QUERY",
	CodeDataPathNotFound:         "ESLURM_DATA_PATH_NOT_FOUND",
	CodeDataExpectedTypeMismatch: "ESLURM_DATA_EXPECTED_TYPE_MISMATCH",
	CodeDataAmbiguousModify:      "ESLURM_DATA_AMBIGUOUS_MODIFY",
	CodeDataAmbiguousQuery:       "ESLURM_DATA_AMBIGUOUS_QUERY",
	CodeDataEmptyResult:          "ESLURM_DATA_EMPTY_RESULT",
	CodeDBConnection:             "ESLURM_DB_CONNECTION",
	CodeInvalidJobID:             "ESLURM_INVALID_JOB_ID",
	CodeInvalidPartitionName:     "ESLURM_INVALID_PARTITION_NAME",
	CodeReservationInvalid:       "ESLURM_RESERVATION_INVALID",
	CodeNotSupported:             "ESLURM_NOT_SUPPORTED",
	CodeUTFEncodingViolation:     "ESLURM_UTF_ENCODING_VIOLATION",
	CodeJSONParseError:           "ESLURM_REST_JSON_PARSE_ERROR",
	CodeURLFormParseError:        "ESLURM_REST_URL_FORM_PARSE_ERROR",
	CodeRestUnknownMethodForPath: "ESLURM_REST_UNKNOWN_METHOD_FOR_PATH",
	CodeRestMissingDataParser:    "ESLURM_REST_MISSING_DATA_PARSER",
	CodeAlreadyDone:              "ESLURM_ALREADY_DONE",
	CodeNoChangeInData:           "ESLURM_NO_CHANGE_IN_DATA",
	CodeDataFieldInvalid:         "ESLURM_DATA_FIELD_INVALID",
}

func codeName(c Code) string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ESLURM_UNKNOWN_%d", int(c))
}
