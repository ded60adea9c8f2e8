package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/strategy"
)

// Kind distinguishes the three registration archetypes.
type Kind int

const (
	// KindCommand is a message-driven handler: it runs only when a
	// message arrives on the device's set topic and never gets its own
	// concurrent unit.
	KindCommand Kind = iota + 1

	// KindTelemetry is a periodic probe: the supervisor runs it in its
	// own unit on a fixed interval and publishes results according to
	// the registration's publish strategy.
	KindTelemetry

	// KindDevice is a whole-lifetime coroutine: the supervisor runs it
	// once in its own unit and it owns its own loop until shutdown.
	KindDevice
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindTelemetry:
		return "telemetry"
	case KindDevice:
		return "device"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// Root is the name of the single allowed unnamed registration. The root
// device publishes at the topic root instead of under a name segment.
const Root = ""

// Handler is the callable stored in a registration. It receives the
// argument list resolved from its injection plan, in plan order.
//
// Command and Telemetry handlers may return a value: the runtime
// publishes it to the device's state topic (for telemetry, subject to
// the publish strategy). Device coroutines return only an error.
type Handler func(args []any) (any, error)

// Registration is one stored handler declaration plus its dispatch
// metadata. Registrations are created during bootstrap and immutable
// afterwards.
type Registration struct {
	Name    string
	Kind    Kind
	Handler Handler
	Plan    Plan

	// Interval is the probe period. Telemetry only.
	Interval time.Duration

	// Strategy decides which probed values are transmitted. Telemetry
	// only; nil means every probed value is published.
	Strategy strategy.Strategy
}

// Option configures a registration at declaration time.
type Option func(*option)

type option struct {
	params   []Param
	interval time.Duration
	strategy strategy.Strategy
}

// WithParams declares the handler's injected parameters, in the order
// the handler expects them.
func WithParams(params ...Param) Option {
	return func(o *option) { o.params = params }
}

// WithInterval sets the probe interval of a telemetry registration.
func WithInterval(d time.Duration) Option {
	return func(o *option) { o.interval = d }
}

// WithStrategy sets the publish strategy of a telemetry registration.
func WithStrategy(s strategy.Strategy) Option {
	return func(o *option) { o.strategy = s }
}

// Registry stores device handler registrations keyed by name.
//
// Names are unique across all three kinds, and at most one registration
// may use the empty root name — this single namespace is also what makes
// derived command topics collision-free. Registration order is preserved.
//
// Thread Safety:
//   - All methods are safe for concurrent use, though registration
//     normally happens single-threaded during bootstrap.
type Registry struct {
	mu      sync.Mutex
	entries []*Registration
	names   map[string]Kind
	hasRoot bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{names: make(map[string]Kind)}
}

// Register stores one handler declaration.
//
// The injection plan is built immediately as part of registration, so a
// malformed parameter list fails here, at bootstrap time, never at
// dispatch time.
//
// Parameters:
//   - kind: The registration archetype
//   - name: The device name; registry.Root ("") declares the root device
//   - handler: The callable to invoke
//   - opts: WithParams, WithInterval, WithStrategy
//
// Returns:
//   - error: ErrDuplicateName, ErrDuplicateRoot, ErrNilHandler,
//     ErrNonPositiveInterval, or ErrUnresolvableParam
func (r *Registry) Register(kind Kind, name string, handler Handler, opts ...Option) error {
	if handler == nil {
		return fmt.Errorf("%w: %s registration %q", ErrNilHandler, kind, name)
	}

	var o option
	for _, opt := range opts {
		opt(&o)
	}

	if kind == KindTelemetry && o.interval <= 0 {
		return fmt.Errorf("%w: %s registration %q has interval %v", ErrNonPositiveInterval, kind, name, o.interval)
	}

	plan, err := BuildPlan(kind, o.params)
	if err != nil {
		return fmt.Errorf("%s registration %q: %w", kind, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name == Root {
		if r.hasRoot {
			return ErrDuplicateRoot
		}
	} else if existing, taken := r.names[name]; taken {
		return fmt.Errorf("%w: %q (as %s)", ErrDuplicateName, name, existing)
	}

	reg := &Registration{
		Name:     name,
		Kind:     kind,
		Handler:  handler,
		Plan:     plan,
		Interval: o.interval,
		Strategy: o.strategy,
	}
	r.entries = append(r.entries, reg)
	if name == Root {
		r.hasRoot = true
	} else {
		r.names[name] = kind
	}

	return nil
}

// Command registers a message-driven handler for {prefix}/{name}/set.
func (r *Registry) Command(name string, handler Handler, opts ...Option) error {
	return r.Register(KindCommand, name, handler, opts...)
}

// Telemetry registers a periodic probe handler.
func (r *Registry) Telemetry(name string, handler Handler, opts ...Option) error {
	return r.Register(KindTelemetry, name, handler, opts...)
}

// Device registers a whole-lifetime coroutine handler.
func (r *Registry) Device(name string, handler Handler, opts ...Option) error {
	return r.Register(KindDevice, name, handler, opts...)
}

// Entries returns all registrations in registration order.
func (r *Registry) Entries() []*Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Registration, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
