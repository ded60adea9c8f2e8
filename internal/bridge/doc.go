// Package bridge is the runtime core: it turns a populated registry
// into a running MQTT bridge.
//
// The Supervisor owns the lifecycle. Bootstrap connects the transport
// and builds the shared collaborators; Registration creates one
// DeviceContext per registration, announces availability, and installs
// all command subscriptions; Run enters the lifespan scope and launches
// one concurrent unit per Telemetry and Device registration; Teardown
// cancels the units, waits with an upper bound, runs the lifespan exit
// hook, and retracts availability.
//
// Every handler invocation crosses the Boundary, which contains panics
// and errors, reports them through the Reporter as structured events on
// the error topics, and deduplicates consecutive identical telemetry
// failures. Cancellation is the only signal the boundary lets through.
//
// Inbound messages on {prefix}/{name}/set reach handlers through the
// Router, installed before any unit launches so no startup message is
// lost.
package bridge
