package circuitbreaker

import "sync"

// Registry holds one circuit breaker per endpoint identity for the lifetime
// of the process. Breakers are created lazily on first use; multiple queries
// in flight share the same breaker for a given endpoint, so breaker counters
// see every attempt from every query.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*CircuitBreaker)}
}

// Get returns the breaker for cfg.Name, creating it from cfg on first use.
// Subsequent calls for the same name return the existing breaker and ignore cfg.
func (r *Registry) Get(cfg Config) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[cfg.Name]; ok {
		return cb
	}
	cb := New(cfg)
	r.breakers[cfg.Name] = cb
	return cb
}

// States returns a snapshot of breaker states by endpoint name.
// Used by the health endpoint to report operational status.
func (r *Registry) States() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make(map[string]string, len(r.breakers))
	for name, cb := range r.breakers {
		states[name] = cb.State().String()
	}
	return states
}

// defaultRegistry is the process-wide registry, torn down only at process exit.
var defaultRegistry = NewRegistry()

// Get returns the breaker for cfg.Name from the process-wide registry.
func Get(cfg Config) *CircuitBreaker {
	return defaultRegistry.Get(cfg)
}

// States returns the process-wide registry's state snapshot.
func States() map[string]string {
	return defaultRegistry.States()
}
