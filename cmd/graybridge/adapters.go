package main

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/nerrad567/gray-bridge-core/internal/adapter"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/logging"
)

// Adapter port names. Handlers depend on these ports, never on the
// concrete simulations behind them.
const (
	portClimateSensor = "climate-sensor"
	portRelayDriver   = "relay-driver"
	portDoorLock      = "door-lock"
)

// registerAdapters installs the demo hardware simulations, each with a
// dry-run alternate that never mutates state.
func registerAdapters(adapters *adapter.Registry, log *logging.Logger) error {
	if err := adapters.Register(portClimateSensor, newSimClimateSensor(), fixedClimateSensor{}); err != nil {
		return err
	}
	if err := adapters.Register(portRelayDriver, newSimRelayDriver(log), dryRelayDriver{log: log}); err != nil {
		return err
	}
	return adapters.Register(portDoorLock, newSimDoorLock(log), dryDoorLock{log: log})
}

// ClimateReading is one sample from a climate sensor.
type ClimateReading struct {
	Temperature float64
	Humidity    float64
}

// ClimateSensor is the abstract climate sensor port.
type ClimateSensor interface {
	Read() (ClimateReading, error)
}

// simClimateSensor drifts a plausible indoor climate with a bounded
// random walk.
type simClimateSensor struct {
	mu          sync.Mutex
	temperature float64
	humidity    float64
}

func newSimClimateSensor() *simClimateSensor {
	return &simClimateSensor{temperature: 21.0, humidity: 45.0}
}

func (s *simClimateSensor) Read() (ClimateReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.temperature = clamp(s.temperature+(rand.Float64()-0.5)*0.4, 15, 28)
	s.humidity = clamp(s.humidity+(rand.Float64()-0.5)*2, 30, 70)
	return ClimateReading{Temperature: round1(s.temperature), Humidity: round1(s.humidity)}, nil
}

// fixedClimateSensor is the dry-run alternate: a constant reading.
type fixedClimateSensor struct{}

func (fixedClimateSensor) Read() (ClimateReading, error) {
	return ClimateReading{Temperature: 21.0, Humidity: 45.0}, nil
}

// RelayDriver is the abstract relay port. Apply validates and applies a
// switching command, returning the resulting state.
type RelayDriver interface {
	Apply(command string) (string, error)
}

// simRelayDriver holds an in-memory relay state.
type simRelayDriver struct {
	mu    sync.Mutex
	state string
	log   *logging.Logger
}

func newSimRelayDriver(log *logging.Logger) *simRelayDriver {
	return &simRelayDriver{state: "off", log: log}
}

func (r *simRelayDriver) Apply(command string) (string, error) {
	state := strings.ToLower(strings.TrimSpace(command))
	if state != "on" && state != "off" {
		return "", fmt.Errorf("unsupported relay command %q", command)
	}

	r.mu.Lock()
	r.state = state
	r.mu.Unlock()

	r.log.Debug("relay switched", "state", state)
	return state, nil
}

// dryRelayDriver validates commands but never switches anything.
type dryRelayDriver struct {
	log *logging.Logger
}

func (r dryRelayDriver) Apply(command string) (string, error) {
	state := strings.ToLower(strings.TrimSpace(command))
	if state != "on" && state != "off" {
		return "", fmt.Errorf("unsupported relay command %q", command)
	}
	r.log.Info("dry run: relay command suppressed", "state", state)
	return state, nil
}

// DoorLock is the abstract door lock port.
type DoorLock interface {
	Apply(command string) (string, error)
	State() string
	Close() error
}

// simDoorLock holds an in-memory lock state.
type simDoorLock struct {
	mu    sync.Mutex
	state string
	log   *logging.Logger
}

func newSimDoorLock(log *logging.Logger) *simDoorLock {
	return &simDoorLock{state: "locked", log: log}
}

func (d *simDoorLock) Apply(command string) (string, error) {
	var state string
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "lock":
		state = "locked"
	case "unlock":
		state = "unlocked"
	default:
		return "", fmt.Errorf("unsupported door command %q", command)
	}

	d.mu.Lock()
	d.state = state
	d.mu.Unlock()

	d.log.Debug("door lock actuated", "state", state)
	return state, nil
}

func (d *simDoorLock) State() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *simDoorLock) Close() error {
	d.log.Debug("door lock released")
	return nil
}

// dryDoorLock validates commands but never actuates.
type dryDoorLock struct {
	log *logging.Logger
}

func (d dryDoorLock) Apply(command string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "lock":
		return "locked", nil
	case "unlock":
		return "unlocked", nil
	default:
		return "", fmt.Errorf("unsupported door command %q", command)
	}
}

func (d dryDoorLock) State() string { return "locked" }

func (d dryDoorLock) Close() error { return nil }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
