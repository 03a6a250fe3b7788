package v0039

import "slurmrestd/internal/dataparser"

// TypeTags this revision knows how to PARSE/DUMP. Names mirror the
// stable identifiers threaded through the openapi plugin sources
// (JOB_DESC_MSG, JOB_INFO_MSG, ... in src/plugins/openapi/v0.0.39/*.c).
const (
	TagJobDescMsg       dataparser.TypeTag = "JOB_DESC_MSG"
	TagJobInfoMsg        dataparser.TypeTag = "JOB_INFO_MSG"
	TagKillJobsMsg       dataparser.TypeTag = "KILL_JOBS_MSG"
	TagJobSubmitResp     dataparser.TypeTag = "JOB_SUBMIT_RESP"
	TagJobAllocResp      dataparser.TypeTag = "JOB_ALLOC_RESP"
	TagJobResultEntry    dataparser.TypeTag = "JOB_RESULT_ENTRY"

	TagUpdateNodeMsg dataparser.TypeTag = "UPDATE_NODE_MSG"
	TagNodeInfoMsg   dataparser.TypeTag = "NODE_INFO_MSG"

	TagPartitionInfoMsg dataparser.TypeTag = "PARTITION_INFO_MSG"

	TagReservationInfoMsg dataparser.TypeTag = "RESERVATION_INFO_MSG"

	TagAccountRec     dataparser.TypeTag = "ACCOUNT_REC"
	TagAssociationRec dataparser.TypeTag = "ASSOCIATION_REC"
	TagQOSRec         dataparser.TypeTag = "QOS_REC"
	TagUserRec        dataparser.TypeTag = "USER_REC"
	TagWckeyRec       dataparser.TypeTag = "WCKEY_REC"
	TagTresRec        dataparser.TypeTag = "TRES_REC"
	TagClusterRec     dataparser.TypeTag = "CLUSTER_REC"

	TagPingResp     dataparser.TypeTag = "OPENAPI_PING_RESP"
	TagDiagResp     dataparser.TypeTag = "OPENAPI_DIAG_RESP"
	TagLicensesResp dataparser.TypeTag = "OPENAPI_LICENSES_RESP"
	TagSharesResp   dataparser.TypeTag = "OPENAPI_SHARES_RESP"
	TagResp         dataparser.TypeTag = "OPENAPI_RESP"
)
