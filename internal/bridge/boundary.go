package bridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// panicError wraps a recovered panic value so it travels the normal
// error path through classification and reporting.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", p.value)
}

// errorStringType is the concrete type errors.New returns; sentinels of
// this type are classified by message rather than by type name.
var errorStringType = reflect.TypeOf(errors.New(""))

// Classify reduces an error to a stable classification string used for
// consecutive-failure deduplication.
//
// Panics classify as "panic". Other errors classify by the innermost
// error in their Unwrap chain: sentinel values made with errors.New use
// their message, anything else uses its concrete type name. Two failures
// with the same classification are considered "the same problem".
func Classify(err error) string {
	var pe panicError
	if errors.As(err, &pe) {
		return "panic"
	}

	root := err
	for {
		unwrapped := errors.Unwrap(root)
		if unwrapped == nil {
			break
		}
		root = unwrapped
	}

	if reflect.TypeOf(root) == errorStringType {
		return root.Error()
	}
	return fmt.Sprintf("%T", root)
}

// Boundary is the error isolation layer wrapped around every handler
// invocation. It guarantees that one device's failure is reported,
// contained, and never escapes to affect another device.
//
// The one thing it never contains is the cancellation signal
// (context.Canceled): that always propagates so the supervising task can
// observe unit completion.
type Boundary struct {
	reporter *Reporter
	logger   Logger

	// states holds the last observed error classification per device,
	// used purely for deduplication. "" means no outstanding error.
	mu     sync.Mutex
	states map[string]string
}

// NewBoundary creates a Boundary reporting through the given Reporter.
func NewBoundary(reporter *Reporter, logger Logger) *Boundary {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Boundary{
		reporter: reporter,
		logger:   logger,
		states:   make(map[string]string),
	}
}

// invoke runs f with panic containment.
func invoke(f func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = panicError{value: r}
		}
	}()
	return f()
}

// Dispatch wraps one command dispatch.
//
// On failure it emits a structured error event scoped to the device and
// consumes the error, so the router continues delivering subsequent
// messages unaffected. Command errors are not deduplicated: every failed
// message is an independent event.
//
// Returns:
//   - any: The handler's result, nil on failure
//   - error: Only context.Canceled, which always propagates
func (b *Boundary) Dispatch(device string, f func() (any, error)) (any, error) {
	result, err := invoke(f)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	b.reporter.Error(device, Classify(err), err)
	return nil, nil
}

// Probe wraps one telemetry cycle.
//
// Failures are classified and deduplicated per device: only a failure
// whose classification differs from the device's current error state
// emits an event; identical consecutive classifications are suppressed.
// The first success after any failure emits one recovery notice and
// clears the state. The caller's loop always continues to its next
// scheduled iteration regardless of outcome.
//
// Returns:
//   - any: The probed value when ok
//   - bool: Whether the cycle succeeded
//   - error: Only context.Canceled, which always propagates
func (b *Boundary) Probe(device string, f func() (any, error)) (any, bool, error) {
	result, err := invoke(f)
	if err == nil {
		b.markRecovered(device)
		return result, true, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, false, err
	}

	class := Classify(err)
	if b.swapState(device, class) != class {
		b.reporter.Error(device, class, err)
	} else {
		b.logger.Debug("suppressed repeated error",
			"device", deviceLabel(device),
			"class", class,
		)
	}
	return nil, false, nil
}

// RunUnit wraps a whole-lifetime device coroutine.
//
// On failure it emits one structured error event and returns; only this
// device's concurrent unit ends, others are unaffected.
//
// Returns:
//   - error: Only context.Canceled, which always propagates
func (b *Boundary) RunUnit(device string, f func() error) error {
	_, err := invoke(func() (any, error) { return nil, f() })
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	b.reporter.Error(device, Classify(err), err)
	return nil
}

// markRecovered emits one recovery notice if the device had an
// outstanding error, and resets its state to none.
func (b *Boundary) markRecovered(device string) {
	if b.swapState(device, "") != "" {
		b.reporter.Recovered(device)
	}
}

// swapState atomically replaces the device's error state, returning the
// previous classification.
func (b *Boundary) swapState(device, class string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	previous := b.states[device]
	b.states[device] = class
	return previous
}
