package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/bridge"
	"github.com/nerrad567/gray-bridge-core/internal/registry"
	"github.com/nerrad567/gray-bridge-core/internal/strategy"
)

// processStart anchors the root device's uptime reading.
var processStart = time.Now()

// registerDevices declares the demo device set. Every registration
// failure is a construction bug and aborts startup before the broker
// connection is made.
func registerDevices(reg *registry.Registry) error {
	// Climate: probe every 15s, but only publish when a minute has
	// passed AND a reading moved by more than 0.2 in some field.
	err := reg.Telemetry("climate", climateTelemetry,
		registry.WithParams(registry.Adapter(portClimateSensor), registry.Settings()),
		registry.WithInterval(15*time.Second),
		registry.WithStrategy(strategy.All(
			strategy.Every(time.Minute),
			strategy.OnChangeThreshold(0.2),
		)),
	)
	if err != nil {
		return err
	}

	// Relay: pure inbound command handler; the returned state is
	// published to the relay's state topic.
	err = reg.Command("relay", relayCommand,
		registry.WithParams(
			registry.Adapter(portRelayDriver),
			registry.Payload(),
			registry.Logger(),
		),
	)
	if err != nil {
		return err
	}

	// Door: a device coroutine that installs its own inbound handler
	// and owns its loop.
	err = reg.Device("door", doorUnit,
		registry.WithParams(registry.DeviceContext(), registry.Adapter(portDoorLock)),
	)
	if err != nil {
		return err
	}

	// Root device: bridge vitals on {prefix}/state.
	return reg.Telemetry(registry.Root, vitalsTelemetry,
		registry.WithParams(registry.Clock()),
		registry.WithInterval(time.Minute),
	)
}

// climateTelemetry reads the climate sensor and shapes the state payload.
func climateTelemetry(args []any) (any, error) {
	sensor := args[0].(ClimateSensor)
	settings := args[1].(map[string]any)

	reading, err := sensor.Read()
	if err != nil {
		return nil, fmt.Errorf("reading climate sensor: %w", err)
	}

	unit := "celsius"
	if v, ok := settings["temperature_unit"].(string); ok {
		unit = v
	}

	return map[string]any{
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
		"unit":        unit,
	}, nil
}

// relayCommand applies one inbound switching command and returns the
// resulting state for publication.
func relayCommand(args []any) (any, error) {
	driver := args[0].(RelayDriver)
	payload := args[1].(string)
	log := args[2].(bridge.Logger)

	state, err := driver.Apply(payload)
	if err != nil {
		return nil, err
	}

	log.Info("relay command applied", "state", state)
	return map[string]string{"state": state}, nil
}

// doorUnit is the door's whole-lifetime coroutine: it installs the
// inbound command handler, publishes the initial state, and then holds
// until shutdown.
func doorUnit(args []any) (any, error) {
	dev := args[0].(*bridge.DeviceContext)
	lock := args[1].(DoorLock)

	err := dev.OnCommand(func(topic, payload string) error {
		state, err := lock.Apply(payload)
		if err != nil {
			return err
		}
		return dev.PublishState(map[string]string{"state": state})
	})
	if err != nil {
		return nil, err
	}

	if err := dev.PublishState(map[string]string{"state": lock.State()}); err != nil {
		dev.Logger().Warn("initial door state publish failed", "error", err)
	}

	<-dev.Done()
	return nil, nil
}

// vitalsTelemetry publishes bridge process vitals on the root device.
func vitalsTelemetry(args []any) (any, error) {
	clock := args[0].(strategy.Clock)

	return map[string]any{
		"version":        version,
		"uptime_seconds": int(clock.Now().Sub(processStart).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}, nil
}
