package envelope

// Code is a numeric error code from the façade's error registry. Existing
// clients parse these values directly out of the wire envelope, so they
// are treated as a stable contract and never renumbered once assigned
// (spec.md §6, "numeric values are part of the wire contract").
type Code int

// The registry mirrors the ESLURM_REST_*/ESLURM_DATA_*/ESLURM_*
// identifiers threaded through every openapi plugin handler in the
// reference source (e.g. src/slurmrestd/plugins/openapi/*/*.c call
// resp_error(ctxt, ESLURM_REST_INVALID_QUERY, ...) throughout). The
// upstream numeric assignments live in a header outside the retrieved
// source set, so this block assigns a fresh, internally-consistent
// sequence in the registry's namespace; see DESIGN.md for the decision.
const (
	CodeNone Code = 0

	CodeRestInvalidQuery          Code = 7001
	CodeDataPathNotFound          Code = 7002
	CodeDataExpectedTypeMismatch  Code = 7003
	CodeDataAmbiguousModify       Code = 7004
	CodeDataAmbiguousQuery        Code = 7005
	CodeDataEmptyResult           Code = 7006
	CodeDBConnection              Code = 7007
	CodeInvalidJobID              Code = 7008
	CodeInvalidPartitionName      Code = 7009
	CodeReservationInvalid        Code = 7010
	CodeNotSupported              Code = 7011
	CodeUTFEncodingViolation      Code = 7012
	CodeJSONParseError            Code = 7013
	CodeURLFormParseError         Code = 7014
	CodeRestUnknownMethodForPath  Code = 7015
	CodeRestMissingDataParser     Code = 7016
	CodeAlreadyDone               Code = 7017
	CodeNoChangeInData            Code = 7018
	CodeDataFieldInvalid          Code = 7019
)
