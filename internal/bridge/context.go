package bridge

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge-core/internal/registry"
	"github.com/nerrad567/gray-bridge-core/internal/strategy"
)

// CommandFunc is the inbound command handler a device coroutine may
// install on its context. It receives the raw topic and payload of the
// message routed to the device's set topic.
type CommandFunc func(topic, payload string) error

// DeviceContext is the per-device capability bundle handed to handlers.
//
// One context is created per registration during the supervisor's
// Registration phase and shared by reference across all invocations of
// that device's handlers; it is never shared across devices. It lives
// until Teardown.
type DeviceContext struct {
	name      string
	settings  any
	clock     strategy.Clock
	logger    Logger
	transport Transport
	topics    mqtt.Topics
	adapters  registry.AdapterResolver
	done      <-chan struct{}

	// Single-slot inbound command handler, installable only on Device
	// registrations.
	commandCapable bool
	cmdMu          sync.Mutex
	command        CommandFunc
}

// Name returns the device name ("" for the root device).
func (d *DeviceContext) Name() string { return d.name }

// Settings returns the bridge's free-form configuration settings.
func (d *DeviceContext) Settings() any { return d.settings }

// Clock returns the monotonic clock capability.
func (d *DeviceContext) Clock() strategy.Clock { return d.clock }

// Logger returns the device-scoped logger.
func (d *DeviceContext) Logger() Logger { return d.logger }

// Done returns the shared shutdown signal. Device coroutines must
// observe it at loop-iteration boundaries at minimum.
func (d *DeviceContext) Done() <-chan struct{} { return d.done }

// Sleep pauses for the given duration, racing a timer against the
// shutdown signal.
//
// Returns:
//   - bool: true if the full duration elapsed; false, immediately and
//     without error, the instant shutdown fires
func (d *DeviceContext) Sleep(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-d.done:
		return false
	case <-timer.C:
		return true
	}
}

// PublishState publishes a value to the device's retained state topic.
//
// Strings and byte slices are sent as-is; any other value is JSON
// encoded.
func (d *DeviceContext) PublishState(value any) error {
	payload, err := encodePayload(value)
	if err != nil {
		return fmt.Errorf("encoding state for device %q: %w", d.name, err)
	}
	return d.transport.Publish(d.topics.State(d.name), payload, true)
}

// Publish sends a payload to an arbitrary topic through the shared
// transport connection.
func (d *DeviceContext) Publish(topic string, payload []byte, retained bool) error {
	return d.transport.Publish(topic, payload, retained)
}

// Adapter resolves the singleton instance of an abstract port.
func (d *DeviceContext) Adapter(port string) (any, error) {
	return d.adapters.Resolve(port)
}

// OnCommand installs the device's single inbound command handler,
// invoked for messages on {prefix}/{name}/set.
//
// Only Device registrations may install one (Command registrations are
// themselves the inbound handler), and only once: a second installation
// attempt fails immediately with ErrHandlerInstalled.
func (d *DeviceContext) OnCommand(fn CommandFunc) error {
	if !d.commandCapable {
		return fmt.Errorf("%w: device %q", ErrNotCommandCapable, d.name)
	}
	if fn == nil {
		return fmt.Errorf("bridge: device %q: command handler cannot be nil", d.name)
	}

	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	if d.command != nil {
		return fmt.Errorf("%w: device %q", ErrHandlerInstalled, d.name)
	}
	d.command = fn
	return nil
}

// installedCommand returns the installed handler, or nil.
func (d *DeviceContext) installedCommand() CommandFunc {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()
	return d.command
}

// AppContext is the reduced capability bundle for lifespan-scope hooks:
// configuration and adapter resolution only. The absence of publish,
// sleep, and command registration is enforced by this type's shape, not
// by convention.
type AppContext struct {
	settings any
	adapters registry.AdapterResolver
}

// NewAppContext creates the app-scoped bundle.
func NewAppContext(settings any, adapters registry.AdapterResolver) *AppContext {
	return &AppContext{settings: settings, adapters: adapters}
}

// Settings returns the bridge's free-form configuration settings.
func (a *AppContext) Settings() any { return a.settings }

// Adapter resolves the singleton instance of an abstract port.
func (a *AppContext) Adapter(port string) (any, error) {
	return a.adapters.Resolve(port)
}

// encodePayload converts a handler's returned value to transport bytes.
func encodePayload(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
