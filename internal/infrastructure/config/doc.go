// Package config loads and validates Gray Bridge configuration.
//
// Configuration comes from a YAML file with three override layers:
// hardcoded defaults, file values, then GRAYBRIDGE_* environment
// variables (useful for credentials that should stay out of the file).
//
// The free-form `settings` section is not interpreted by the runtime.
// It is handed to device handlers as the injectable configuration
// capability, so each bridge defines its own shape for it.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
package config
