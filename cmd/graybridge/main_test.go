package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/adapter"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/logging"
	"github.com/nerrad567/gray-bridge-core/internal/registry"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidConfigValues verifies run fails validation before
// connecting anywhere.
func TestRun_InvalidConfigValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	// bridge.name is required; leaving it empty must fail validation.
	configContent := `
bridge:
  prefix: "test/bridge"

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883

logging:
  level: info
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("GRAYBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail config validation")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("GRAYBRIDGE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("GRAYBRIDGE_CONFIG", "/etc/graybridge/config.yaml")
	if got := getConfigPath(); got != "/etc/graybridge/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}

func TestRegisterDevices(t *testing.T) {
	reg := registry.New()
	if err := registerDevices(reg); err != nil {
		t.Fatalf("registerDevices() error = %v", err)
	}
	if reg.Len() != 4 {
		t.Errorf("registered %d devices, want 4", reg.Len())
	}
}

func TestRegisterAdapters(t *testing.T) {
	adapters := adapter.NewRegistry(false)
	if err := registerAdapters(adapters, logging.Default()); err != nil {
		t.Fatalf("registerAdapters() error = %v", err)
	}
	for _, port := range []string{portClimateSensor, portRelayDriver, portDoorLock} {
		if !adapters.Has(port) {
			t.Errorf("port %q not registered", port)
		}
	}
}

func TestRegisterAdaptersDryRunAlternates(t *testing.T) {
	adapters := adapter.NewRegistry(true)
	if err := registerAdapters(adapters, logging.Default()); err != nil {
		t.Fatalf("registerAdapters() error = %v", err)
	}

	instance, err := adapters.Resolve(portClimateSensor)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := instance.(fixedClimateSensor); !ok {
		t.Errorf("dry-run resolved %T, want the fixed sensor alternate", instance)
	}
}

func TestClimateTelemetryShapesPayload(t *testing.T) {
	settings := map[string]any{"temperature_unit": "fahrenheit"}

	result, err := climateTelemetry([]any{ClimateSensor(fixedClimateSensor{}), settings})
	if err != nil {
		t.Fatalf("climateTelemetry() error = %v", err)
	}

	payload := result.(map[string]any)
	if payload["temperature"] != 21.0 {
		t.Errorf("temperature = %v, want 21.0", payload["temperature"])
	}
	if payload["unit"] != "fahrenheit" {
		t.Errorf("unit = %v, want settings override", payload["unit"])
	}
}

func TestRelayCommand(t *testing.T) {
	driver := newSimRelayDriver(logging.Default())

	result, err := relayCommand([]any{RelayDriver(driver), "ON", logging.Default()})
	if err != nil {
		t.Fatalf("relayCommand() error = %v", err)
	}
	state := result.(map[string]string)
	if state["state"] != "on" {
		t.Errorf("state = %q, want %q", state["state"], "on")
	}
}

func TestRelayCommandRejectsUnknown(t *testing.T) {
	driver := newSimRelayDriver(logging.Default())

	if _, err := relayCommand([]any{RelayDriver(driver), "toggle", logging.Default()}); err == nil {
		t.Error("relayCommand() error = nil for an unsupported command")
	}
}

func TestSimDoorLock(t *testing.T) {
	lock := newSimDoorLock(logging.Default())
	if lock.State() != "locked" {
		t.Fatalf("initial state = %q, want locked", lock.State())
	}

	state, err := lock.Apply("unlock")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if state != "unlocked" || lock.State() != "unlocked" {
		t.Errorf("state = %q / %q, want unlocked", state, lock.State())
	}

	if _, err := lock.Apply("wedge"); err == nil {
		t.Error("Apply() error = nil for an unsupported command")
	}
}
