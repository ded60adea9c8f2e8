package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/adapter"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge-core/internal/registry"
	"github.com/nerrad567/gray-bridge-core/internal/strategy"
)

// LifespanFunc is a lifespan-scope hook. The enter hook runs after
// subscriptions are installed and before any device unit launches; the
// exit hook runs during teardown after all units have finished.
type LifespanFunc func(ctx context.Context, app *AppContext) error

// Supervisor orchestrates the bridge lifecycle: Bootstrap, Registration,
// Run, Teardown, in strict order, terminal at Teardown.
//
// It launches exactly one concurrent unit per Telemetry/Device
// registration (Command registrations are purely message-driven through
// the router) and blocks until the context is cancelled.
type Supervisor struct {
	cfg      *config.Config
	reg      *registry.Registry
	adapters *adapter.Registry
	logger   Logger
	clock    strategy.Clock

	// transport, when pre-set, is used instead of connecting; the
	// supervisor then does not own its lifecycle.
	transport Transport

	enter LifespanFunc
	exit  LifespanFunc
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithTransport supplies an already-connected transport. The supervisor
// will not close it during teardown.
func WithTransport(t Transport) SupervisorOption {
	return func(s *Supervisor) { s.transport = t }
}

// WithClock replaces the system clock (tests).
func WithClock(c strategy.Clock) SupervisorOption {
	return func(s *Supervisor) { s.clock = c }
}

// WithLifespan installs the lifespan-scope entry/exit hooks. Either may
// be nil.
func WithLifespan(enter, exit LifespanFunc) SupervisorOption {
	return func(s *Supervisor) {
		s.enter = enter
		s.exit = exit
	}
}

// WithLogger sets the supervisor's logger.
func WithLogger(l Logger) SupervisorOption {
	return func(s *Supervisor) { s.logger = l }
}

// NewSupervisor creates a Supervisor for the given registrations.
func NewSupervisor(cfg *config.Config, reg *registry.Registry, adapters *adapter.Registry, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		reg:      reg,
		adapters: adapters,
		logger:   noopLogger{},
		clock:    strategy.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Settings == nil {
		s.cfg.Settings = map[string]any{}
	}
	return s
}

// Run executes the full lifecycle and blocks until ctx is cancelled.
//
// Phase failure semantics:
//   - Bootstrap/Registration failures are fatal and return before any
//     unit is launched.
//   - A lifespan entry failure is fatal: no partial run.
//   - A lifespan exit failure is logged; the remaining teardown steps
//     proceed.
//
// Returns:
//   - error: nil on clean shutdown, or the fatal startup error
func (s *Supervisor) Run(ctx context.Context) error {
	topics := mqtt.Topics{Prefix: s.cfg.Bridge.Prefix}

	// Bootstrap: shared collaborators, then connect.
	transport := s.transport
	ownsTransport := transport == nil
	if ownsTransport {
		client, err := mqtt.Connect(s.cfg.MQTT, topics)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(s.logger)
		transport = client
	}
	closeTransport := func() {
		if !ownsTransport {
			return
		}
		if err := transport.Close(); err != nil {
			s.logger.Error("error closing transport", "error", err)
		}
	}

	reporter := NewReporter(transport, topics, s.clock, s.logger)
	boundary := NewBoundary(reporter, s.logger)
	router := NewRouter(transport, topics, s.logger)

	// Registration: shutdown signal, contexts, routes, subscriptions.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := s.reg.Entries()
	app := NewAppContext(s.cfg.Settings, s.adapters)

	if err := s.checkAdapterPorts(entries); err != nil {
		closeTransport()
		return err
	}

	contexts := make(map[string]*DeviceContext, len(entries))
	for _, reg := range entries {
		dev := &DeviceContext{
			name:           reg.Name,
			settings:       s.cfg.Settings,
			clock:          s.clock,
			logger:         s.logger,
			transport:      transport,
			topics:         topics,
			adapters:       s.adapters,
			done:           runCtx.Done(),
			commandCapable: reg.Kind == registry.KindDevice,
		}
		contexts[reg.Name] = dev

		if reg.Strategy != nil {
			reg.Strategy.Bind(s.clock)
		}

		reporter.Available(reg.Name)

		switch reg.Kind {
		case registry.KindCommand:
			router.Add(reg.Name, s.commandDispatch(reg, dev, app, boundary))
		case registry.KindDevice:
			router.Add(reg.Name, s.deviceDispatch(reg.Name, dev, boundary))
		}
	}

	if err := router.SubscribeAll(); err != nil {
		s.announceOffline(reporter, entries)
		closeTransport()
		return fmt.Errorf("installing subscriptions: %w", err)
	}

	// Run: lifespan scope, then one unit per Telemetry/Device registration.
	if s.enter != nil {
		if err := s.enter(ctx, app); err != nil {
			s.announceOffline(reporter, entries)
			closeTransport()
			return fmt.Errorf("%w: %w", ErrLifespanEnter, err)
		}
	}

	var wg sync.WaitGroup
	units := 0
	for _, reg := range entries {
		dev := contexts[reg.Name]
		switch reg.Kind {
		case registry.KindTelemetry:
			wg.Add(1)
			units++
			go func(reg *registry.Registration, dev *DeviceContext) {
				defer wg.Done()
				s.telemetryLoop(reg, dev, app, boundary)
			}(reg, dev)
		case registry.KindDevice:
			wg.Add(1)
			units++
			go func(reg *registry.Registration, dev *DeviceContext) {
				defer wg.Done()
				s.deviceUnit(reg, dev, app, boundary)
			}(reg, dev)
		}
	}

	s.logger.Info("bridge running",
		"registrations", len(entries),
		"units", units,
	)

	<-ctx.Done()
	s.logger.Info("shutdown signal received")

	// Teardown: cancel units, bounded wait, lifespan exit, availability,
	// disconnect.
	cancel()
	timeout := time.Duration(s.cfg.Bridge.TeardownTimeout) * time.Second
	if !waitTimeout(&wg, timeout) {
		s.logger.Error("teardown incomplete", "error", ErrTeardownTimeout, "timeout", timeout)
	}

	if s.exit != nil {
		if err := s.exit(context.Background(), app); err != nil {
			s.logger.Error("lifespan exit failed", "error", err)
		}
	}

	s.announceOffline(reporter, entries)
	closeTransport()

	s.logger.Info("bridge stopped")
	return nil
}

// checkAdapterPorts verifies every adapter port referenced by a plan is
// registered, so a missing port fails at startup rather than on the
// first dispatch.
func (s *Supervisor) checkAdapterPorts(entries []*registry.Registration) error {
	for _, reg := range entries {
		for _, p := range reg.Plan {
			if p.Role == registry.RoleAdapter && !s.adapters.Has(p.Port) {
				return fmt.Errorf("%w: %s registration %q wants port %q",
					adapter.ErrUnknownPort, reg.Kind, deviceLabel(reg.Name), p.Port)
			}
		}
	}
	return nil
}

// announceOffline publishes the retained offline availability for every
// registration.
func (s *Supervisor) announceOffline(reporter *Reporter, entries []*registry.Registration) {
	for _, reg := range entries {
		reporter.Unavailable(reg.Name)
	}
}

// providers builds the provider set for one invocation.
func (s *Supervisor) providers(dev *DeviceContext, app *AppContext) registry.Providers {
	return registry.Providers{
		Device:   dev,
		App:      app,
		Settings: s.cfg.Settings,
		Clock:    s.clock,
		Logger:   s.logger,
		Adapters: s.adapters,
	}
}

// telemetryLoop is the concurrent unit of one Telemetry registration:
// probe, decide, publish, sleep, until shutdown.
func (s *Supervisor) telemetryLoop(reg *registry.Registration, dev *DeviceContext, app *AppContext, boundary *Boundary) {
	var lastPublished any
	published := false

	for {
		value, ok, err := boundary.Probe(reg.Name, func() (any, error) {
			args, err := registry.Resolve(reg.Plan, s.providers(dev, app))
			if err != nil {
				return nil, err
			}
			return reg.Handler(args)
		})
		if err != nil {
			return // cancellation propagates past the boundary
		}

		if ok {
			should := true
			if reg.Strategy != nil {
				var previous any
				if published {
					previous = lastPublished
				}
				should = reg.Strategy.ShouldPublish(value, previous)
			}
			// The first produced value is always published so retained
			// initial state exists for downstream consumers.
			if !published {
				should = true
			}

			if should {
				if err := dev.PublishState(value); err != nil {
					s.logger.Warn("state publish failed",
						"device", deviceLabel(reg.Name),
						"error", err,
					)
				} else {
					lastPublished = value
					published = true
					if reg.Strategy != nil {
						reg.Strategy.OnPublished()
					}
				}
			}
		}

		if !dev.Sleep(reg.Interval) {
			return
		}
	}
}

// deviceUnit is the concurrent unit of one Device registration: the
// handler owns its own loop and runs until it returns or shutdown fires.
func (s *Supervisor) deviceUnit(reg *registry.Registration, dev *DeviceContext, app *AppContext, boundary *Boundary) {
	// The returned error can only be the cancellation signal, which the
	// unit observes by ending.
	_ = boundary.RunUnit(reg.Name, func() error {
		args, err := registry.Resolve(reg.Plan, s.providers(dev, app))
		if err != nil {
			return err
		}
		_, err = reg.Handler(args)
		return err
	})
}

// commandDispatch builds the per-message dispatch for a Command
// registration. A non-nil handler result is published to the device's
// state topic.
func (s *Supervisor) commandDispatch(reg *registry.Registration, dev *DeviceContext, app *AppContext, boundary *Boundary) dispatchFunc {
	return func(topic, payload string) {
		result, err := boundary.Dispatch(reg.Name, func() (any, error) {
			providers := s.providers(dev, app)
			providers.Topic = topic
			providers.Payload = payload
			providers.HasMessage = true

			args, err := registry.Resolve(reg.Plan, providers)
			if err != nil {
				return nil, err
			}
			return reg.Handler(args)
		})
		if err != nil || result == nil {
			return
		}

		if err := dev.PublishState(result); err != nil {
			s.logger.Warn("state publish failed",
				"device", deviceLabel(reg.Name),
				"error", err,
			)
		}
	}
}

// deviceDispatch builds the per-message dispatch for a Device
// registration's installed inbound handler.
func (s *Supervisor) deviceDispatch(name string, dev *DeviceContext, boundary *Boundary) dispatchFunc {
	return func(topic, payload string) {
		fn := dev.installedCommand()
		if fn == nil {
			s.logger.Warn("command dropped: device has no inbound handler installed",
				"device", deviceLabel(name),
				"topic", topic,
			)
			return
		}

		_, _ = boundary.Dispatch(name, func() (any, error) {
			return nil, fn(topic, payload)
		})
	}
}

// waitTimeout waits for the WaitGroup with an upper bound.
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
