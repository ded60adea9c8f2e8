package adapter

import "errors"

// Domain-specific errors for adapter resolution.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownPort is returned when resolving a port that was never registered.
	ErrUnknownPort = errors.New("adapter: unknown port")

	// ErrDuplicatePort is returned when registering a port name twice.
	ErrDuplicatePort = errors.New("adapter: port already registered")

	// ErrInvalidPort is returned for an empty port name or nil live instance.
	ErrInvalidPort = errors.New("adapter: invalid port registration")
)
