package registry

import "errors"

// Registration-time errors. All of them are fatal: they surface during
// bridge bootstrap, before any connection is made, and prevent the
// process from starting. Use errors.Is() to check for them.
var (
	// ErrDuplicateName is returned when a name is registered twice,
	// regardless of registration kind.
	ErrDuplicateName = errors.New("registry: name already registered")

	// ErrDuplicateRoot is returned when a second unnamed (root)
	// registration is attempted.
	ErrDuplicateRoot = errors.New("registry: root device already registered")

	// ErrUnresolvableParam is returned when an injection plan declares a
	// parameter the resolver cannot provide.
	ErrUnresolvableParam = errors.New("registry: unresolvable handler parameter")

	// ErrNonPositiveInterval is returned for a telemetry registration
	// whose probe interval is zero or negative.
	ErrNonPositiveInterval = errors.New("registry: telemetry interval must be positive")

	// ErrNilHandler is returned when registering without a handler.
	ErrNilHandler = errors.New("registry: handler cannot be nil")

	// ErrMissingProvider is returned by Resolve when a plan entry has no
	// value in the provider set. This indicates a construction bug in the
	// runtime, never a runtime condition.
	ErrMissingProvider = errors.New("registry: no provider for planned parameter")
)
