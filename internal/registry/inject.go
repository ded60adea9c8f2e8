package registry

import (
	"fmt"
)

// Role is the capability category of one handler parameter.
//
// Python-style signature inspection has no Go analogue, so handlers
// declare their parameters explicitly with the typed constructors below
// (DeviceContext, Adapter, Payload, ...). The declared list is classified
// once at registration time into a Plan; nothing is reflected on at
// dispatch time.
type Role int

const (
	// RoleDeviceContext injects the full device-scoped capability bundle.
	RoleDeviceContext Role = iota + 1

	// RoleAppContext injects the reduced app-scoped bundle (settings and
	// adapters only).
	RoleAppContext

	// RoleSettings injects the bridge's configuration settings object.
	RoleSettings

	// RoleClock injects the monotonic clock capability.
	RoleClock

	// RoleLogger injects the device-scoped logger.
	RoleLogger

	// RoleAdapter injects the singleton instance of an abstract port.
	RoleAdapter

	// RoleTopic injects the raw inbound topic string (Command kind only).
	RoleTopic

	// RolePayload injects the raw inbound payload string (Command kind only).
	RolePayload
)

// String returns the parameter category name used in error messages.
func (r Role) String() string {
	switch r {
	case RoleDeviceContext:
		return "device context"
	case RoleAppContext:
		return "app context"
	case RoleSettings:
		return "settings"
	case RoleClock:
		return "clock"
	case RoleLogger:
		return "logger"
	case RoleAdapter:
		return "adapter"
	case RoleTopic:
		return "topic"
	case RolePayload:
		return "payload"
	default:
		return fmt.Sprintf("unknown role %d", int(r))
	}
}

// Param declares one handler parameter: a capability role plus, for
// adapter parameters, the abstract port name.
type Param struct {
	Role Role
	Port string
}

// DeviceContext declares a parameter receiving the device-scoped context.
func DeviceContext() Param { return Param{Role: RoleDeviceContext} }

// AppContext declares a parameter receiving the app-scoped context.
func AppContext() Param { return Param{Role: RoleAppContext} }

// Settings declares a parameter receiving the configuration object.
func Settings() Param { return Param{Role: RoleSettings} }

// Clock declares a parameter receiving the monotonic clock capability.
func Clock() Param { return Param{Role: RoleClock} }

// Logger declares a parameter receiving the device-scoped logger.
func Logger() Param { return Param{Role: RoleLogger} }

// Adapter declares a parameter receiving the singleton for an abstract port.
func Adapter(port string) Param { return Param{Role: RoleAdapter, Port: port} }

// Topic declares a parameter receiving the raw inbound topic string.
// Valid only for Command registrations.
func Topic() Param { return Param{Role: RoleTopic} }

// Payload declares a parameter receiving the raw inbound payload string.
// Valid only for Command registrations.
func Payload() Param { return Param{Role: RolePayload} }

// Plan is the ordered, validated list of parameters a handler requires.
// It is built once at registration time; a zero-parameter handler has an
// empty plan.
type Plan []Param

// BuildPlan classifies a handler's declared parameters against the
// recognised categories for its registration kind.
//
// Unclassifiable parameters fail here, at registration time, never at
// dispatch time: an unknown role, an adapter parameter without a port
// name, or a topic/payload parameter outside a Command registration all
// return ErrUnresolvableParam naming the offending parameter.
func BuildPlan(kind Kind, params []Param) (Plan, error) {
	plan := make(Plan, 0, len(params))

	for i, p := range params {
		switch p.Role {
		case RoleDeviceContext, RoleAppContext, RoleSettings, RoleClock, RoleLogger:
			// Always available.
		case RoleAdapter:
			if p.Port == "" {
				return nil, fmt.Errorf("%w: parameter %d is an adapter with no port name", ErrUnresolvableParam, i)
			}
		case RoleTopic, RolePayload:
			if kind != KindCommand {
				return nil, fmt.Errorf("%w: parameter %d (%s) is only injectable into command handlers, not %s registrations",
					ErrUnresolvableParam, i, p.Role, kind)
			}
		default:
			return nil, fmt.Errorf("%w: parameter %d has %s", ErrUnresolvableParam, i, p.Role)
		}
		plan = append(plan, p)
	}

	return plan, nil
}

// AdapterResolver resolves abstract port names to singleton instances.
// Satisfied by adapter.Registry.
type AdapterResolver interface {
	Resolve(port string) (any, error)
}

// Providers is the value set one invocation resolves against. It is
// built fresh per invocation from the device/app contexts and, for
// command dispatch, the current topic/payload pair.
type Providers struct {
	Device   any
	App      any
	Settings any
	Clock    any
	Logger   any
	Adapters AdapterResolver

	// Topic and Payload are set only for command dispatch.
	Topic      string
	Payload    string
	HasMessage bool
}

// Resolve turns a plan into the concrete argument list for one invocation.
//
// This is a pure lookup: it performs no I/O and never substitutes
// defaults. A plan entry with no matching provider returns
// ErrMissingProvider, which indicates a bug in the runtime's provider-set
// construction rather than a runtime condition.
func Resolve(plan Plan, p Providers) ([]any, error) {
	args := make([]any, 0, len(plan))

	for i, param := range plan {
		var value any

		switch param.Role {
		case RoleDeviceContext:
			value = p.Device
		case RoleAppContext:
			value = p.App
		case RoleSettings:
			value = p.Settings
		case RoleClock:
			value = p.Clock
		case RoleLogger:
			value = p.Logger
		case RoleAdapter:
			if p.Adapters == nil {
				return nil, fmt.Errorf("%w: parameter %d wants port %q but no adapter resolver is present",
					ErrMissingProvider, i, param.Port)
			}
			resolved, err := p.Adapters.Resolve(param.Port)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %d: %w", ErrMissingProvider, i, err)
			}
			value = resolved
		case RoleTopic:
			if !p.HasMessage {
				return nil, fmt.Errorf("%w: parameter %d wants the inbound topic outside command dispatch", ErrMissingProvider, i)
			}
			value = p.Topic
		case RolePayload:
			if !p.HasMessage {
				return nil, fmt.Errorf("%w: parameter %d wants the inbound payload outside command dispatch", ErrMissingProvider, i)
			}
			value = p.Payload
		}

		if value == nil && param.Role != RoleTopic && param.Role != RolePayload {
			return nil, fmt.Errorf("%w: parameter %d (%s)", ErrMissingProvider, i, param.Role)
		}
		args = append(args, value)
	}

	return args, nil
}
