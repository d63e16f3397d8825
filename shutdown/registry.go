// Package shutdown coordinates graceful termination: OS signal handling,
// in-flight request draining, and ordered cleanup of resources like the
// HTTP server and the database connection.
package shutdown

import (
	"context"
	"sort"
	"sync"
)

// Func is a cleanup function invoked during shutdown.
type Func func(ctx context.Context) error

// entry holds a registered cleanup function with its ordering priority.
type entry struct {
	name     string
	fn       Func
	priority int
}

// Registry is a thread-safe, priority-ordered collection of cleanup
// functions. Lower priority values run first: flush-style work (logs)
// before connection teardown, connection teardown before resource closes.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a cleanup function. Registration after Shutdown has run is
// a no-op.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Shutdown runs every registered function in priority order, continuing
// past failures, and returns the collected errors. The registry is closed
// afterwards; a second call returns nil.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered cleanup functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
