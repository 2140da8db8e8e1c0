// Package router implements pattern-based routing with wildcard fallback
// and fan-out broadcasting with exclusion (§4.4), grounded on
// original_source/src/actors/hermes/router.rs and hermes/broadcast.rs.
package router

import (
	"sort"
	"sync"

	"github.com/olympusrt/olympus/message"
)

// Route is a pattern→handler binding (§3, "RouteEntry").
type Route struct {
	Pattern  string
	Handler  message.ActorName
	Priority int
}

// Router maps destination names, and optional wildcard patterns, to
// handler actor names. Lookup order is exact match, then wildcard entries
// sorted by descending priority.
type Router struct {
	mu        sync.RWMutex
	exact     map[string]Route
	wildcards []Route
}

func New() *Router {
	return &Router{exact: make(map[string]Route)}
}

// RegisterRoute adds (or replaces) an exact-match route for pattern.
func (r *Router) RegisterRoute(pattern string, handler message.ActorName, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact[pattern] = Route{Pattern: pattern, Handler: handler, Priority: priority}
}

// RegisterWildcard adds a "*" fallback route. Ties among wildcards break
// by descending priority (§3).
func (r *Router) RegisterWildcard(handler message.ActorName, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wildcards = append(r.wildcards, Route{Pattern: "*", Handler: handler, Priority: priority})
	sort.SliceStable(r.wildcards, func(i, j int) bool {
		return r.wildcards[i].Priority > r.wildcards[j].Priority
	})
}

// Route resolves to to a handler actor name, or ok=false if no route
// exists (the caller decides whether to drop or dead-letter).
func (r *Router) Route(to message.ActorName) (message.ActorName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if route, ok := r.exact[to.String()]; ok {
		return route.Handler, true
	}
	if len(r.wildcards) > 0 {
		return r.wildcards[0].Handler, true
	}
	return "", false
}

func (r *Router) RouteCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exact)
}
