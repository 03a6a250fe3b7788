// Package restapi implements the request-context/operation framework
// of spec.md §4.H: it owns the global path-router/handler registry,
// builds a Ctxt per incoming request, dispatches to the operation
// registered for the resolved tag, and applies the commit discipline
// of spec.md §4.H step 6 / §4.I "Commit discipline" on the way out.
package restapi

import (
	"context"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser"
	"slurmrestd/internal/envelope"
	"slurmrestd/internal/router"
	"slurmrestd/internal/tree"
)

// Ctxt is the per-request context handed to every Handler. It carries
// everything spec.md §4.H step 1 names: method, parameters, query,
// body, a client id, and a backend handle, plus the envelope the
// handler accumulates errors/warnings/payload onto.
type Ctxt struct {
	Context    context.Context
	Method     router.Method
	Params     *tree.Value // path placeholders, raw strings, keyed by name
	Query      *tree.Value // parsed x-www-form-urlencoded query string
	Body       *tree.Value // parsed request body (JSON or urlencoded), nil if empty
	ParentPath string      // the request path, used as PARSE's parent_path
	ClientID   string

	Backend backend.Client
	Parser  dataparser.Parser
	Env     *envelope.Envelope

	payloadKey string
	payload    *tree.Value
	commit     bool
}

// SetPayload records the response payload and the key it is mounted
// under in the envelope (spec.md §6's "<payload>" slot). Handlers that
// produce no payload (pure errors, empty-result warnings) never call
// this, and ToTree omits the slot entirely.
func (c *Ctxt) SetPayload(key string, v *tree.Value) {
	c.payloadKey = key
	c.payload = v
}

// SetCommit flags that this request mutated backend state and the
// transaction should be committed if the request ends with result
// code 0 (spec.md §4.H step 6). Read-only handlers never call this.
func (c *Ctxt) SetCommit() {
	c.commit = true
}

// RespError is a thin forward to the envelope, kept on Ctxt so handler
// code reads the way spec.md's pseudocode does: "return resp_error(...)".
func (c *Ctxt) RespError(code envelope.Code, source, format string, args ...any) envelope.Code {
	return c.Env.RespError(code, source, format, args...)
}

func (c *Ctxt) RespWarn(source, format string, args ...any) {
	c.Env.RespWarn(source, format, args...)
}

// Handler is an operation implementation. Handlers are registered
// against a path pattern + method set via RegisterOperation.
type Handler func(*Ctxt)
