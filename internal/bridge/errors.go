package bridge

import "errors"

// Domain-specific errors for the bridge runtime.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrHandlerInstalled is returned when a device coroutine installs a
	// second inbound command handler on its context.
	ErrHandlerInstalled = errors.New("bridge: inbound command handler already installed")

	// ErrNotCommandCapable is returned when OnCommand is called on a
	// context whose registration kind cannot receive inbound commands.
	ErrNotCommandCapable = errors.New("bridge: context does not accept an inbound command handler")

	// ErrLifespanEnter is returned when the lifespan entry hook fails.
	// This is fatal: no device unit is launched.
	ErrLifespanEnter = errors.New("bridge: lifespan entry failed")

	// ErrTeardownTimeout is reported when device units do not finish
	// within the configured teardown window.
	ErrTeardownTimeout = errors.New("bridge: timed out waiting for device units to finish")
)
