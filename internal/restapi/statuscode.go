package restapi

import (
	"net/http"

	"slurmrestd/internal/envelope"
)

// httpStatusFor maps a result code to the transport status spec.md §7
// describes: "client errors map to 4xx, backend errors to 5xx."
func httpStatusFor(code envelope.Code) int {
	switch code {
	case envelope.CodeNone:
		return http.StatusOK
	case envelope.CodeDataPathNotFound,
		envelope.CodeRestMissingDataParser,
		envelope.CodeInvalidJobID,
		envelope.CodeInvalidPartitionName,
		envelope.CodeReservationInvalid,
		envelope.CodeDataEmptyResult:
		return http.StatusNotFound
	case envelope.CodeRestUnknownMethodForPath:
		return http.StatusMethodNotAllowed
	case envelope.CodeRestInvalidQuery,
		envelope.CodeDataExpectedTypeMismatch,
		envelope.CodeDataAmbiguousModify,
		envelope.CodeDataAmbiguousQuery,
		envelope.CodeUTFEncodingViolation,
		envelope.CodeJSONParseError,
		envelope.CodeURLFormParseError,
		envelope.CodeNotSupported:
		return http.StatusBadRequest
	case envelope.CodeDBConnection:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
