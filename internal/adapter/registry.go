package adapter

import (
	"fmt"
	"sync"
)

// Registry maps abstract port names to app-scoped singleton instances.
//
// Each port registers a live implementation and, optionally, a dry-run
// alternate. Which of the two Resolve returns is fixed once at startup by
// the bridge.dry_run config flag; ports without an alternate always
// resolve to their live instance.
//
// Resolved instances are shared by every handler requesting the same
// port. The registry imposes no per-call locking on them: adapters that
// are mutated from concurrently running handlers are responsible for
// their own internal synchronisation.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu     sync.RWMutex
	ports  map[string]entry
	dryRun bool
}

// entry holds the two possible instances for one port.
type entry struct {
	live any
	dry  any
}

// NewRegistry creates an adapter registry. When dryRun is true, ports
// with a dry-run alternate resolve to it instead of the live instance.
func NewRegistry(dryRun bool) *Registry {
	return &Registry{
		ports:  make(map[string]entry),
		dryRun: dryRun,
	}
}

// Register installs the instances for a port.
//
// Parameters:
//   - port: The abstract port name handlers request (e.g. "sensor")
//   - live: The production implementation (required)
//   - dry: The dry-run alternate, or nil if the port has none
//
// Returns:
//   - error: ErrDuplicatePort if the port is already registered, or an
//     error for an empty name or nil live instance
func (r *Registry) Register(port string, live, dry any) error {
	if port == "" {
		return fmt.Errorf("%w: port name is empty", ErrInvalidPort)
	}
	if live == nil {
		return fmt.Errorf("%w: port %q has no live instance", ErrInvalidPort, port)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ports[port]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePort, port)
	}
	r.ports[port] = entry{live: live, dry: dry}
	return nil
}

// Resolve returns the singleton instance for a port.
//
// Returns:
//   - any: The live instance, or the dry-run alternate when the registry
//     was created with dryRun and the port registered one
//   - error: ErrUnknownPort if the port was never registered
func (r *Registry) Resolve(port string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.ports[port]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPort, port)
	}
	if r.dryRun && e.dry != nil {
		return e.dry, nil
	}
	return e.live, nil
}

// Has reports whether a port is registered.
func (r *Registry) Has(port string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ports[port]
	return ok
}
