package httpdriver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"slurmrestd/shared/logger"
)

// GinDriver implements Driver using the Gin framework, the reference
// stack's own HTTP adapter (lib/http/gin.go).
type GinDriver struct {
	engine  *gin.Engine
	server  *http.Server
	address string
}

// NewGinDriver builds a release-mode Gin engine with the reference
// stack's tracing/logging middleware, a recovery handler, OpenTelemetry
// instrumentation via otelgin, and a Prometheus metrics endpoint.
func NewGinDriver() *GinDriver {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(otelgin.Middleware("slurmrestd"))
	engine.Use(requestIDMiddleware())
	engine.Use(requestLogMiddleware())
	engine.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("slurmrestd")
	p.Use(engine)

	return &GinDriver{engine: engine}
}

// requestIDKey is the request-scoped gin key requestLogMiddleware and
// ginRequestContext.Get("request_id") both read.
const requestIDKey = "request_id"

// requestIDMiddleware stamps every request with an id, reusing an
// inbound X-Request-Id from a caller or upstream proxy when present
// rather than always minting a fresh one, and echoes it back on the
// response so a caller can correlate retries with server-side logs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		span := trace.SpanFromContext(c.Request.Context())
		traceID := span.SpanContext().TraceID().String()
		requestID, _ := c.Get(requestIDKey)

		logger.Log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("remote_addr", c.ClientIP()),
			logger.String("trace_id", traceID),
			logger.Any("request_id", requestID))

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 400 {
			span.RecordError(fmt.Errorf("HTTP %d", status))
		}

		logger.Log.Info("http response",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.String("trace_id", traceID),
			logger.Duration("duration", time.Since(start)))
	}
}

// Engine exposes the underlying *gin.Engine for wiring that genuinely
// needs Gin's own types rather than the transport-neutral RequestContext
// — session middleware and the operator UI's OAuth2 handlers
// (internal/auth) being the one case in this module.
func (g *GinDriver) Engine() *gin.Engine {
	return g.engine
}

func (g *GinDriver) AddRoute(method, path string, handler func(RequestContext)) error {
	ginHandler := func(c *gin.Context) {
		handler(newGinRequestContext(c))
	}

	switch method {
	case "GET":
		g.engine.GET(path, ginHandler)
	case "POST":
		g.engine.POST(path, ginHandler)
	case "DELETE":
		g.engine.DELETE(path, ginHandler)
	case "PATCH":
		g.engine.PATCH(path, ginHandler)
	default:
		return fmt.Errorf("httpdriver: unsupported method %q", method)
	}

	logger.Debug("added route", logger.String("method", method), logger.String("path", path))
	return nil
}

func (g *GinDriver) AddMiddleware(middleware func(RequestContext, func())) error {
	g.engine.Use(func(c *gin.Context) {
		middleware(newGinRequestContext(c), c.Next)
	})
	return nil
}

func (g *GinDriver) Start(address string) error {
	g.address = address
	g.server = &http.Server{Addr: address, Handler: g.engine}

	logger.Info("starting gin http server", logger.String("address", address))
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("failed to start http server", logger.Err(err))
		return err
	}
	return nil
}

func (g *GinDriver) Stop() error {
	if g.server == nil {
		return nil
	}
	logger.Info("stopping gin http server")
	return g.server.Close()
}

func (g *GinDriver) DriverName() string    { return "gin" }
func (g *GinDriver) DriverVersion() string { return "1.9" }

// ginRequestContext adapts *gin.Context to RequestContext.
type ginRequestContext struct {
	c *gin.Context
}

func newGinRequestContext(c *gin.Context) RequestContext {
	return &ginRequestContext{c: c}
}

func (g *ginRequestContext) Method() string                  { return g.c.Request.Method }
func (g *ginRequestContext) Path() string                    { return g.c.Request.URL.Path }
func (g *ginRequestContext) PathParam(name string) string     { return g.c.Param(name) }
func (g *ginRequestContext) QueryParam(name string) string    { return g.c.Query(name) }
func (g *ginRequestContext) RawQuery() string                 { return g.c.Request.URL.RawQuery }
func (g *ginRequestContext) Header(name string) string        { return g.c.GetHeader(name) }
func (g *ginRequestContext) BodyBytes() ([]byte, error)       { return io.ReadAll(g.c.Request.Body) }
func (g *ginRequestContext) Status(code int)                  { g.c.Status(code) }
func (g *ginRequestContext) SetHeader(name, value string)     { g.c.Header(name, value) }
func (g *ginRequestContext) Set(key string, value any)        { g.c.Set(key, value) }
func (g *ginRequestContext) Get(key string) (any, bool)       { return g.c.Get(key) }
func (g *ginRequestContext) Context() context.Context         { return g.c.Request.Context() }

func (g *ginRequestContext) Data(contentType string, data []byte) error {
	g.c.Data(g.c.Writer.Status(), contentType, data)
	return nil
}
