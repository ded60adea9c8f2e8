// Gray Bridge Core - MQTT Device Bridge Runtime
//
// This is the demo bridge binary: a set of simulated devices wired
// through the full runtime. It registers a climate telemetry probe, a
// relay command handler, a door device coroutine, and a root vitals
// probe, then hands them to the supervisor.
//
// Real bridges follow the same shape with hardware-backed adapters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-bridge-core/internal/adapter"
	"github.com/nerrad567/gray-bridge-core/internal/bridge"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/logging"
	"github.com/nerrad567/gray-bridge-core/internal/registry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, cfg.Bridge.Name)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Adapter ports: each with a live simulation and a dry-run alternate.
	adapters := adapter.NewRegistry(cfg.Bridge.DryRun)
	if err := registerAdapters(adapters, log); err != nil {
		return fmt.Errorf("registering adapters: %w", err)
	}
	log.Info("adapters registered", "dry_run", cfg.Bridge.DryRun)

	// Device registrations: any failure here aborts before the broker
	// connection is made.
	reg := registry.New()
	if err := registerDevices(reg); err != nil {
		return fmt.Errorf("registering devices: %w", err)
	}
	log.Info("devices registered", "count", reg.Len())

	supervisor := bridge.NewSupervisor(cfg, reg, adapters,
		bridge.WithLogger(log),
		bridge.WithLifespan(warmSensors(log), drainAdapters(log)),
	)
	return supervisor.Run(ctx)
}

// getConfigPath returns the configuration file path, preferring the
// GRAYBRIDGE_CONFIG environment variable.
func getConfigPath() string {
	if path := os.Getenv("GRAYBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// warmSensors is the lifespan entry hook: take one reading from the
// climate sensor so a dead sensor fails startup instead of the first
// probe cycle.
func warmSensors(log *logging.Logger) bridge.LifespanFunc {
	return func(ctx context.Context, app *bridge.AppContext) error {
		instance, err := app.Adapter(portClimateSensor)
		if err != nil {
			return err
		}
		sensor := instance.(ClimateSensor)

		reading, err := sensor.Read()
		if err != nil {
			return fmt.Errorf("warming climate sensor: %w", err)
		}
		log.Info("climate sensor warm",
			"temperature", reading.Temperature,
			"humidity", reading.Humidity,
		)
		return nil
	}
}

// drainAdapters is the lifespan exit hook: release adapter resources
// after all device units have finished.
func drainAdapters(log *logging.Logger) bridge.LifespanFunc {
	return func(ctx context.Context, app *bridge.AppContext) error {
		instance, err := app.Adapter(portDoorLock)
		if err != nil {
			return err
		}
		if closer, ok := instance.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("closing door lock: %w", err)
			}
		}
		log.Info("adapters drained")
		return nil
	}
}
