package operations

import (
	"time"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

func init() {
	restapi.RegisterOperation("/slurm/{data_parser}/jobs/", jobsCollectionHandler, router.GET, router.DELETE)
	restapi.RegisterOperation("/slurm/{data_parser}/job/{job_id}", jobSingleHandler, router.GET, router.POST, router.DELETE)
	restapi.RegisterOperation("/slurm/{data_parser}/job/submit", jobSubmitHandler, router.POST)
	restapi.RegisterOperation("/slurm/{data_parser}/job/allocate", jobAllocateHandler, router.POST)
}

func jobsCollectionHandler(ctxt *restapi.Ctxt) {
	switch ctxt.Method {
	case router.GET:
		loadJobs(ctxt)
	case router.DELETE:
		killJobsBulk(ctxt)
	default:
		ctxt.RespError(envelope.CodeRestInvalidQuery, "jobs", "method %s not supported on /jobs/", ctxt.Method)
	}
}

// loadJobs implements GET /jobs/: spec.md §4.I "call load_jobs(update_time,
// flags); NO_CHANGE_IN_DATA -> warning with formatted timestamp and empty
// body."
func loadJobs(ctxt *restapi.Ctxt) {
	updateTime := queryInt64(ctxt, "update_time", 0)
	flags := queryInt64(ctxt, "flags", 0)

	jobs, lastUpdate, rc := ctxt.Backend.LoadJobs(ctxt.Context, updateTime, flags)
	if rc == backend.RCNoChangeInData {
		ctxt.RespWarn("load_jobs", "no change in data since %s", time.Unix(updateTime, 0).UTC().Format(time.RFC3339))
		ctxt.SetPayload("jobs", tree.NewList())
		return
	}
	if rc != backend.RCSuccess && rc != backend.RCAlreadyDone {
		ctxt.RespError(envelope.CodeDBConnection, "load_jobs", "load_jobs failed (rc=%d)", rc)
		return
	}

	elems := make([]*tree.Value, 0, len(jobs))
	for _, j := range jobs {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagJobInfoMsg, j, ctxt.Env))
	}
	payload := tree.Dict(
		tree.V("jobs", tree.List(elems...)),
		tree.I("last_update", lastUpdate),
	)
	ctxt.SetPayload("jobs", payload)
}

// killJobsBulk implements DELETE /jobs/: parse a KILL_JOBS_MSG body and
// dump the per-job result list.
func killJobsBulk(ctxt *restapi.Ctxt) {
	req := &v0039.KillJobsMsg{}
	if code := ctxt.Parser.Parse(v0039.TagKillJobsMsg, req, ctxt.Body, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
		return
	}

	results, rc := ctxt.Backend.KillJobs(ctxt.Context, req)
	if rc != backend.RCSuccess && rc != backend.RCAlreadyDone {
		ctxt.RespError(envelope.CodeDBConnection, "kill_jobs", "kill_jobs failed (rc=%d)", rc)
		return
	}
	if len(results) == 0 {
		ctxt.RespWarn("kill_jobs", "no jobs matched the requested ids")
	}
	ctxt.SetCommit()
	ctxt.SetPayload("results", dumpJobResults(ctxt, results))
}

func jobSingleHandler(ctxt *restapi.Ctxt) {
	raw := pathParam(ctxt, "job_id")
	cid, err := parseCompositeJobID(raw)
	if err != nil {
		ctxt.RespError(envelope.CodeInvalidJobID, "job", "%v", err)
		return
	}

	switch ctxt.Method {
	case router.GET:
		getJob(ctxt, cid)
	case router.POST:
		updateJob(ctxt, cid)
	case router.DELETE:
		killJobSingle(ctxt, cid)
	default:
		ctxt.RespError(envelope.CodeRestInvalidQuery, "job", "method %s not supported on /job/{job_id}", ctxt.Method)
	}
}

// getJob implements GET /job/{job_id}: warn and ignore array task id and
// step id components, call load_job(jobid|het), error if unknown.
func getJob(ctxt *restapi.Ctxt, cid compositeJobID) {
	if cid.ArrayTaskID != "" {
		ctxt.RespWarn("job", "array task id component %s ignored on a single-job lookup", cid.ArrayTaskID)
	}
	if cid.StepID != "" {
		ctxt.RespWarn("job", "step id component %s ignored on a single-job lookup", cid.StepID)
	}

	job, rc := ctxt.Backend.LoadJob(ctxt.Context, cid.loadID())
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeInvalidJobID, "job", "unknown job %s", cid.loadID())
		return
	}
	dumped := ctxt.Parser.Dump(v0039.TagJobInfoMsg, job, ctxt.Env)
	ctxt.SetPayload("jobs", tree.List(dumped))
}

// updateJob implements POST /job/{job_id}: reject array task id
// targeting, warn on a step id, dump the per-component result list and
// the submit-user message.
func updateJob(ctxt *restapi.Ctxt, cid compositeJobID) {
	if cid.ArrayTaskID != "" {
		ctxt.RespError(envelope.CodeInvalidJobID, "job", "cannot target a single array task id %s for update", cid.ArrayTaskID)
		return
	}
	if cid.StepID != "" {
		ctxt.RespWarn("job", "step id component %s ignored on update", cid.StepID)
	}

	desc := &v0039.JobDescMsg{}
	if code := ctxt.Parser.Parse(v0039.TagJobDescMsg, desc, ctxt.Body, ctxt.ParentPath, ctxt.Env); code != envelope.CodeNone {
		return
	}

	results, submitMsg, rc := ctxt.Backend.UpdateJob(ctxt.Context, cid.loadID(), desc)
	if rc != backend.RCSuccess {
		ctxt.RespError(envelope.CodeDBConnection, "update_job", "update_job failed (rc=%d)", rc)
		return
	}
	ctxt.SetCommit()
	payload := tree.Dict(
		tree.V("results", dumpJobResults(ctxt, results)),
		tree.S("job_submit_user_msg", submitMsg),
	)
	ctxt.SetPayload("job", payload)
}

// killJobSingle implements DELETE /job/{job_id}: optional signal
// (default SIGKILL) and flags (default FULL_JOB), a one-element kill
// request; ALREADY_DONE is success with a warning, a zero-count result
// is a warning rather than an error.
func killJobSingle(ctxt *restapi.Ctxt, cid compositeJobID) {
	if cid.ArrayTaskID != "" || cid.StepID != "" {
		ctxt.RespWarn("job", "array/step components of %s ignored, cancelling the whole job", cid.loadID())
	}

	req := &v0039.KillJobsMsg{
		JobIDs: []string{cid.loadID()},
		Signal: queryInt64(ctxt, "signal", defaultKillSignal),
		Flags:  queryInt64(ctxt, "flags", fullJobFlag),
	}

	results, rc := ctxt.Backend.KillJobs(ctxt.Context, req)
	switch rc {
	case backend.RCAlreadyDone:
		ctxt.RespWarn("kill_jobs", "job %s already completed", cid.loadID())
	case backend.RCSuccess, backend.RCNoChangeInData:
		if len(results) == 0 {
			ctxt.RespWarn("kill_jobs", "job %s not found", cid.loadID())
		}
	default:
		ctxt.RespError(envelope.CodeDBConnection, "kill_jobs", "kill_jobs failed (rc=%d)", rc)
		return
	}
	ctxt.SetCommit()
	ctxt.SetPayload("results", dumpJobResults(ctxt, results))
}

func dumpJobResults(ctxt *restapi.Ctxt, results []*v0039.JobResultEntry) *tree.Value {
	elems := make([]*tree.Value, 0, len(results))
	for _, r := range results {
		elems = append(elems, ctxt.Parser.Dump(v0039.TagJobResultEntry, r, ctxt.Env))
	}
	return tree.List(elems...)
}

// jobSubmitUnion is the {job, jobs, script?} body shape POST /job/submit
// and POST /job/allocate both accept.
type jobSubmitUnion struct {
	components []*v0039.JobDescMsg
}

// parseJobSubmitUnion enforces "exactly one of job or jobs" and applies
// the script override (spec.md §4.I).
func parseJobSubmitUnion(ctxt *restapi.Ctxt, source string) (jobSubmitUnion, bool) {
	var out jobSubmitUnion
	if ctxt.Body == nil {
		ctxt.RespError(envelope.CodeDataAmbiguousQuery, source, "request body is required")
		return out, false
	}
	jobNode, hasJob := ctxt.Body.DictKeyGet("job")
	jobsNode, hasJobs := ctxt.Body.DictKeyGet("jobs")

	if hasJob == hasJobs {
		ctxt.RespError(envelope.CodeDataAmbiguousQuery, source, "body must carry exactly one of \"job\" or \"jobs\"")
		return out, false
	}

	if hasJob {
		desc := &v0039.JobDescMsg{}
		if code := ctxt.Parser.Parse(v0039.TagJobDescMsg, desc, jobNode, ctxt.ParentPath+"/job", ctxt.Env); code != envelope.CodeNone {
			return out, false
		}
		out.components = []*v0039.JobDescMsg{desc}
	} else {
		elems, lerr := jobsNode.List()
		if lerr != nil {
			ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, source, "\"jobs\" must be a list")
			return out, false
		}
		if len(elems) == 0 || len(elems) > maxHetJobComponents {
			ctxt.RespError(envelope.CodeRestInvalidQuery, source, "\"jobs\" must carry 1..%d components, got %d", maxHetJobComponents, len(elems))
			return out, false
		}
		out.components = make([]*v0039.JobDescMsg, 0, len(elems))
		for i, e := range elems {
			desc := &v0039.JobDescMsg{}
			if code := ctxt.Parser.Parse(v0039.TagJobDescMsg, desc, e, ctxt.ParentPath+"/jobs", ctxt.Env); code != envelope.CodeNone {
				return out, false
			}
			desc.HetJobOffset = int64(i)
			out.components = append(out.components, desc)
		}
	}

	if scriptNode, hasScript := ctxt.Body.DictKeyGet("script"); hasScript {
		s, serr := scriptNode.String()
		if serr != nil {
			ctxt.RespError(envelope.CodeDataExpectedTypeMismatch, source, "\"script\" must be a string")
			return out, false
		}
		out.components[0].Script = s
	}

	if out.components[0].Script == "" {
		ctxt.RespError(envelope.CodeDataEmptyResult, source, "job script is empty or missing")
		return out, false
	}
	return out, true
}

// jobSubmitHandler implements POST /job/submit: non-fatal submission
// return codes are downgraded to warnings rather than aborting the
// whole request.
func jobSubmitHandler(ctxt *restapi.Ctxt) {
	union, ok := parseJobSubmitUnion(ctxt, "job_submit")
	if !ok {
		return
	}

	var primary *v0039.JobSubmitResp
	results := make([]*tree.Value, 0, len(union.components))
	for _, desc := range union.components {
		resp, rc := ctxt.Backend.SubmitJob(ctxt.Context, desc)
		switch rc {
		case backend.RCSuccess:
			// no-op, fall through to dump below
		case backend.RCAlreadyDone, backend.RCNoChangeInData:
			ctxt.RespWarn("job_submit", "component %d submitted with a non-fatal outcome (rc=%d)", desc.HetJobOffset, rc)
		default:
			ctxt.RespError(envelope.CodeDBConnection, "job_submit", "job_submit failed on component %d (rc=%d)", desc.HetJobOffset, rc)
			return
		}
		if primary == nil {
			primary = resp
		}
		results = append(results, ctxt.Parser.Dump(v0039.TagJobSubmitResp, resp, ctxt.Env))
	}

	ctxt.SetCommit()
	payload := tree.Dict(
		tree.I("job_id", primary.JobID),
		tree.S("step_id", primary.StepID),
		tree.S("job_submit_user_msg", primary.JobSubmitMsg),
		tree.V("results", tree.List(results...)),
	)
	ctxt.SetPayload("job_submit", payload)
}

// jobAllocateHandler implements POST /job/allocate: same union, but
// forces user_id/group_id to nobody, clears the notification port, and
// defaults min_nodes to 1.
func jobAllocateHandler(ctxt *restapi.Ctxt) {
	union, ok := parseJobSubmitUnion(ctxt, "job_allocate")
	if !ok {
		return
	}

	var primary *v0039.JobSubmitResp
	results := make([]*tree.Value, 0, len(union.components))
	for _, desc := range union.components {
		desc.UserID = nobodyUID
		desc.GroupID = nobodyGID
		desc.NotifyPort = 0
		if desc.MinNodes == 0 {
			desc.MinNodes = 1
		}

		resp, rc := ctxt.Backend.AllocateJob(ctxt.Context, desc)
		switch rc {
		case backend.RCSuccess:
		case backend.RCAlreadyDone, backend.RCNoChangeInData:
			ctxt.RespWarn("job_allocate", "component %d allocated with a non-fatal outcome (rc=%d)", desc.HetJobOffset, rc)
		default:
			ctxt.RespError(envelope.CodeDBConnection, "job_allocate", "job_allocate failed on component %d (rc=%d)", desc.HetJobOffset, rc)
			return
		}
		if primary == nil {
			primary = resp
		}
		results = append(results, ctxt.Parser.Dump(v0039.TagJobSubmitResp, resp, ctxt.Env))
	}

	ctxt.SetCommit()
	payload := tree.Dict(
		tree.I("job_id", primary.JobID),
		tree.S("step_id", primary.StepID),
		tree.S("job_submit_user_msg", primary.JobSubmitMsg),
		tree.V("results", tree.List(results...)),
	)
	ctxt.SetPayload("job_allocate", payload)
}
