package restapi

import (
	"sync"

	"slurmrestd/internal/router"
)

// globalRouter is the single process-wide path-tag table spec.md §5
// describes as "a single global registry of path tags ... initialized
// once at startup; after initialization it is read-only." Registration
// happens from operation package init()s before the HTTP driver starts
// accepting connections; Find is the only call made on the hot path.
var globalRouter = router.New()

var (
	handlersMu sync.RWMutex
	handlers   = make(map[int]Handler)
)

// RegisterOperation binds pattern+methods to handler, returning the
// tag the router assigned. Called from internal/operations package
// init()s, one call per endpoint in spec.md §6's catalogue.
func RegisterOperation(pattern string, handler Handler, methods ...router.Method) int {
	tag := globalRouter.Register(pattern, methods...)
	handlersMu.Lock()
	handlers[tag] = handler
	handlersMu.Unlock()
	return tag
}

func lookupHandler(tag int) (Handler, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[tag]
	return h, ok
}

// Router exposes the global router for cmd/slurmrestd's OpenAPI spec
// generation and for tests; operation packages should prefer
// RegisterOperation over reaching into this directly.
func Router() *router.Router {
	return globalRouter
}
