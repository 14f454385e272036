// Package health tracks the readiness of the server's dependencies.
// Subsystems register a check under a name; the server runs them all on
// /health and reports per-subsystem results.
package health

import (
	"context"
	"sync"
)

// Status is the outcome of one subsystem check.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker probes a single subsystem. A nil return means healthy.
type Checker func(ctx context.Context) error

// Registry runs registered checkers on demand, in registration order.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Checker)}
}

// Register adds a checker under name. Registering the same name again
// replaces the previous checker.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.checks[name]; !ok {
		r.names = append(r.names, name)
	}
	r.checks[name] = check
}

// CheckAll runs every checker and reports the aggregate along with the
// individual results. An empty registry is healthy.
func (r *Registry) CheckAll(ctx context.Context) (bool, []Status) {
	r.mu.RLock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	checks := make(map[string]Checker, len(r.checks))
	for name, check := range r.checks {
		checks[name] = check
	}
	r.mu.RUnlock()

	healthy := true
	statuses := make([]Status, 0, len(names))

	for _, name := range names {
		status := Status{Name: name, Healthy: true}
		if err := checks[name](ctx); err != nil {
			status.Healthy = false
			status.Detail = err.Error()
			healthy = false
		}
		statuses = append(statuses, status)
	}

	return healthy, statuses
}
