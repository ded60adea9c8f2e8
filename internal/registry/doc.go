// Package registry stores device handler declarations and resolves their
// injected parameters.
//
// A Gray Bridge process is assembled from registrations of three kinds:
//
//   - Command: runs per inbound message on {prefix}/{name}/set
//   - Telemetry: probed on a fixed interval, published per strategy
//   - Device: a whole-lifetime coroutine with its own loop
//
// Names share one namespace across all kinds, with a single optional
// unnamed "root" registration publishing at the topic root. Because the
// namespace is shared, two registrations can never derive the same
// command topic.
//
// # Injection
//
// Handlers do not receive a fixed signature. Each registration declares,
// with typed Param constructors, which capabilities its handler wants and
// in what order:
//
//	reg.Telemetry("climate", readClimate,
//	    registry.WithInterval(30*time.Second),
//	    registry.WithParams(registry.DeviceContext(), registry.Adapter("sensor")),
//	)
//
//	func readClimate(args []any) (any, error) {
//	    dev := args[0].(*bridge.DeviceContext)
//	    sensor := args[1].(*sim.Sensor)
//	    ...
//	}
//
// The declared list is validated into a Plan at registration time, so a
// handler asking for something the runtime cannot provide fails during
// bootstrap, before any connection is made. At dispatch time, Resolve
// turns the plan into the argument slice by pure lookup against a
// per-invocation Providers set.
package registry
