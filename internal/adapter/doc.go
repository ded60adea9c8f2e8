// Package adapter holds the registry that maps abstract port names to
// concrete singleton instances.
//
// A "port" is the capability a device handler depends on to reach real
// hardware or an external system: a sensor bus, a relay driver, a vendor
// API client. Handlers never construct these; they declare the port name
// in their injection plan and the runtime hands them whatever instance
// the bridge registered for it at bootstrap.
//
// Each port may carry a dry-run alternate: a safe stand-in (usually a
// simulator) selected for every port at once by the bridge.dry_run config
// flag. This lets a bridge binary run against a live broker without
// touching hardware.
package adapter
