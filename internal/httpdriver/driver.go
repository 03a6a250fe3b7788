// Package httpdriver abstracts the HTTP transport the façade runs on,
// mirrored from the reference stack's lib/http package so the
// request-context/operation framework in internal/restapi never
// imports gin directly.
package httpdriver

import "context"

// RequestContext is the transport-neutral view of one in-flight HTTP
// request/response exchange.
type RequestContext interface {
	Method() string
	Path() string
	PathParam(name string) string
	QueryParam(name string) string
	RawQuery() string
	Header(name string) string
	BodyBytes() ([]byte, error)

	Status(code int)
	SetHeader(name, value string)
	Data(contentType string, data []byte) error

	Set(key string, value any)
	Get(key string) (any, bool)
	Context() context.Context
}

// Driver is the interface an HTTP adapter (Gin, or any future
// replacement) implements.
type Driver interface {
	AddRoute(method, path string, handler func(RequestContext)) error
	AddMiddleware(middleware func(RequestContext, func())) error

	Start(address string) error
	Stop() error

	DriverName() string
	DriverVersion() string
}
