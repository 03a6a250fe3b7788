package restapi

import (
	"strings"

	"gopkg.in/yaml.v3"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/httpdriver"
	"slurmrestd/internal/router"
	"slurmrestd/internal/serializer/json"
	"slurmrestd/internal/serializer/urlencoded"
	"slurmrestd/internal/tree"
	"slurmrestd/shared/logger"
)

// MetaTemplate supplies the plugin/slurm identity stamped into every
// envelope; cmd/slurmrestd builds one from internal/config at startup.
type MetaTemplate struct {
	PluginType   string
	PluginName   string
	SlurmRelease string
	SlurmMajor   int
	SlurmMinor   int
	SlurmMicro   int
}

// Dispatch is the single entrypoint the HTTP driver's catch-all route
// calls for every method. It implements spec.md §4.H steps 1-7: build
// the context, seed the envelope, resolve {data_parser} and the
// handler tag, dispatch, apply commit discipline, tear down.
func Dispatch(hc httpdriver.RequestContext, be backend.Client, meta MetaTemplate) {
	path := strings.Trim(hc.PathParam("path"), "/")
	var segs []string
	if path != "" {
		segs = strings.Split(path, "/")
	}
	method := router.Method(hc.Method())

	env := envelope.New(envelope.Meta{
		Plugin: envelope.PluginMeta{Type: meta.PluginType, Name: meta.PluginName},
		Slurm: envelope.SlurmMeta{
			Release: meta.SlurmRelease,
			Version: envelope.SlurmVersion{Major: meta.SlurmMajor, Minor: meta.SlurmMinor, Micro: meta.SlurmMicro},
		},
		Client: clientMetaFrom(hc),
	})

	tag, params, findErr := globalRouter.Find(segs, method)
	if findErr != nil {
		if _, ok := findErr.(*router.ErrMethodMismatch); ok {
			env.RespError(envelope.CodeRestUnknownMethodForPath, "restapi.Dispatch", "method %s not allowed for %s", method, hc.Path())
		} else {
			env.RespError(envelope.CodeRestInvalidQuery, "restapi.Dispatch", "routing error: %v", findErr)
		}
		writeResponse(hc, env, "", nil)
		return
	}
	if tag == router.Unregistered {
		env.RespError(envelope.CodeDataPathNotFound, "restapi.Dispatch", "no route for %s %s", method, hc.Path())
		writeResponse(hc, env, "", nil)
		return
	}

	handler, ok := lookupHandler(tag)
	if !ok {
		env.RespError(envelope.CodeDataPathNotFound, "restapi.Dispatch", "tag %d has no registered handler", tag)
		writeResponse(hc, env, "", nil)
		return
	}

	parserName := ""
	if node, present := params.DictKeyGet("data_parser"); present {
		parserName, _ = node.String()
	}
	var parser dataparser.Parser
	if parserName == "" {
		env.RespError(envelope.CodeRestMissingDataParser, "restapi.Dispatch", "path %s carries no {data_parser} segment", hc.Path())
	} else {
		p, err := dataparser.Registry().Lookup(parserName)
		if err != nil {
			env.RespError(envelope.CodeRestMissingDataParser, "restapi.Dispatch", "unknown data parser %q", parserName)
		} else {
			parser = p
			parser.Assign("backend", be)
		}
	}

	body, berr := parseBody(hc)
	if berr != nil {
		env.RespError(envelope.CodeJSONParseError, "restapi.Dispatch", "failed to parse body: %v", berr)
	}

	query, qerr := parseQuery(hc.RawQuery())
	if qerr != nil {
		env.RespError(envelope.CodeURLFormParseError, "restapi.Dispatch", "invalid query string: %v", qerr)
	}

	if env.OK() {
		ctxt := &Ctxt{
			Context:    hc.Context(),
			Method:     method,
			Params:     params,
			Query:      query,
			Body:       body,
			ParentPath: hc.Path(),
			ClientID:   env.Meta.Client.Source,
			Backend:    be,
			Parser:     parser,
			Env:        env,
		}
		handler(ctxt)

		if ctxt.commit && env.ResultCode() == envelope.CodeNone {
			if rc := be.Commit(ctxt.Context); rc != backend.RCSuccess {
				logger.Error("restapi: commit failed", logger.String("path", hc.Path()), logger.Int("rc", int(rc)))
				env.RespError(envelope.CodeDBConnection, "restapi.Dispatch", "commit failed (rc=%d)", rc)
			}
		}
		writeResponse(hc, env, ctxt.payloadKey, ctxt.payload)
		return
	}

	writeResponse(hc, env, "", nil)
}

func clientMetaFrom(hc httpdriver.RequestContext) envelope.ClientMeta {
	source := "anonymous"
	uid, gid := -1, -1
	if v, ok := hc.Get("client_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			source = s
		}
	}
	if v, ok := hc.Get("client_uid"); ok {
		if n, ok := v.(int); ok {
			uid = n
		}
	}
	if v, ok := hc.Get("client_gid"); ok {
		if n, ok := v.(int); ok {
			gid = n
		}
	}
	return envelope.ClientMeta{Source: source, UID: uid, GID: gid}
}

func parseQuery(raw string) (*tree.Value, error) {
	if raw == "" {
		return tree.NewDict(), nil
	}
	return urlencoded.Parse([]byte(raw))
}

// parseBody selects the JSON or URL-encoded codec by Content-Type
// (spec.md §6: "accepts request bodies in JSON ... and URL-encoded
// forms"), returning nil for an empty body rather than an error.
func parseBody(hc httpdriver.RequestContext) (*tree.Value, error) {
	raw, err := hc.BodyBytes()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	ct := hc.Header("Content-Type")
	if strings.Contains(ct, "x-www-form-urlencoded") {
		return urlencoded.Parse(raw)
	}
	return json.Parse(raw)
}

// writeResponse serializes the envelope via the JSON codec by default,
// or via gopkg.in/yaml.v3 when the caller's Accept header prefers YAML
// (spec.md §6: "emits responses in JSON or YAML").
func writeResponse(hc httpdriver.RequestContext, env *envelope.Envelope, payloadKey string, payload *tree.Value) {
	status := httpStatusFor(env.ResultCode())
	root := env.ToTree(payloadKey, payload)

	if strings.Contains(hc.Header("Accept"), "yaml") {
		native, err := treeToNative(root)
		if err == nil {
			out, merr := yaml.Marshal(native)
			if merr == nil {
				hc.Status(status)
				hc.SetHeader("Content-Type", "application/yaml")
				_ = hc.Data("application/yaml", out)
				return
			}
			logger.Error("restapi: yaml marshal failed", logger.Err(merr))
		} else {
			logger.Error("restapi: tree to native failed", logger.Err(err))
		}
	}

	out, err := json.Emit(root, json.Options{})
	if err != nil {
		logger.Error("restapi: json emit failed", logger.Err(err))
		hc.Status(500)
		_ = hc.Data("application/json", []byte(`{"errors":[{"error":"ESLURM_REST_INTERNAL"}]}`))
		return
	}
	hc.Status(status)
	hc.SetHeader("Content-Type", "application/json")
	_ = hc.Data("application/json", out)
}
