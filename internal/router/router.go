// Package router implements path-template registration and method-aware
// lookup for the REST façade, mirroring the registry-singleton/RWMutex
// shape the reference stack uses for its provider registry
// (zbz/universal.zRegistry) but specialized to path segments instead of
// URI schemes.
package router

import (
	"strings"
	"sync"

	"slurmrestd/internal/tree"
)

// Method is one of the four methods the façade supports.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	DELETE Method = "DELETE"
	PATCH  Method = "PATCH"
)

// Unregistered is the sentinel tag returned by Find when nothing
// matches.
const Unregistered = 0

// ErrMethodMismatch distinguishes "path matched, wrong method" from
// plain not-found (spec.md §4.G).
type ErrMethodMismatch struct {
	Pattern string
	Method  Method
}

func (e *ErrMethodMismatch) Error() string {
	return "router: " + string(e.Method) + " not allowed for " + e.Pattern
}

type segment struct {
	literal     string
	isParam     bool
	paramName   string
}

type route struct {
	tag      int
	pattern  string
	segments []segment
	methods  map[Method]bool
}

// Router registers path templates with tags and resolves
// (method, split path) to a tag plus extracted placeholder parameters.
// Its table is protected by an RWMutex held in read mode for Find and
// write mode for Register, matching spec.md §5's shared-resource note.
type Router struct {
	mu        sync.RWMutex
	byPattern map[string]*route
	routes    []*route
	nextTag   int
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		byPattern: make(map[string]*route),
		nextTag:   1,
	}
}

// Register assigns a positive tag to pattern, associating it with
// methods. Re-registering the same pattern returns its existing tag and
// merges in any additional methods.
func (r *Router) Register(pattern string, methods ...Method) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPattern[pattern]; ok {
		for _, m := range methods {
			existing.methods[m] = true
		}
		return existing.tag
	}

	rt := &route{
		tag:      r.nextTag,
		pattern:  pattern,
		segments: splitPattern(pattern),
		methods:  make(map[Method]bool, len(methods)),
	}
	for _, m := range methods {
		rt.methods[m] = true
	}
	r.nextTag++
	r.byPattern[pattern] = rt
	r.routes = append(r.routes, rt)
	return rt.tag
}

// Find resolves a split path and method to a tag, writing captured
// placeholder values into a Dict. It returns Unregistered (0) with a
// nil error when nothing matches, and an *ErrMethodMismatch when a path
// matches but not for the given method. Among multiple matching
// patterns, the one with the most literal segments wins (registration
// order breaks ties), making resolution deterministic.
func (r *Router) Find(segs []string, method Method) (int, *tree.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *route
	var bestParams map[string]string
	bestLiteralScore := -1
	var pathMatchedOtherMethod *route

	for _, rt := range r.routes {
		params, literalScore, ok := matchSegments(rt.segments, segs)
		if !ok {
			continue
		}
		if !rt.methods[method] {
			if pathMatchedOtherMethod == nil {
				pathMatchedOtherMethod = rt
			}
			continue
		}
		if literalScore > bestLiteralScore {
			best = rt
			bestParams = params
			bestLiteralScore = literalScore
		}
	}

	if best != nil {
		out := tree.NewDict()
		for k, v := range bestParams {
			slot, err := out.DictKeySet(k)
			if err != nil {
				return Unregistered, nil, err
			}
			*slot = *tree.NewString(v)
		}
		return best.tag, out, nil
	}
	if pathMatchedOtherMethod != nil {
		return Unregistered, nil, &ErrMethodMismatch{Pattern: pathMatchedOtherMethod.pattern, Method: method}
	}
	return Unregistered, nil, nil
}

func splitPattern(pattern string) []segment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			segs = append(segs, segment{isParam: true, paramName: p[1 : len(p)-1]})
		} else {
			segs = append(segs, segment{literal: p})
		}
	}
	return segs
}

// matchSegments reports whether pathSegs matches template segs exactly
// (same length, every literal segment equal, every placeholder segment
// captured), along with a literal-match score used to break ties
// between overlapping patterns.
func matchSegments(segs []segment, pathSegs []string) (map[string]string, int, bool) {
	if len(segs) != len(pathSegs) {
		return nil, 0, false
	}
	params := make(map[string]string)
	score := 0
	for i, s := range segs {
		if s.isParam {
			params[s.paramName] = pathSegs[i]
			continue
		}
		if s.literal != pathSegs[i] {
			return nil, 0, false
		}
		score++
	}
	return params, score, true
}
