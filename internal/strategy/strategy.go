package strategy

import "time"

// Clock is the monotonic time capability strategies are bound to.
// Production code uses SystemClock; tests substitute a controllable fake.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Strategy decides, per telemetry cycle, whether a produced value should
// be transmitted.
//
// The telemetry loop calls ShouldPublish once per probe with the current
// value and the last *published* value (nil when nothing has been
// published yet), and calls OnPublished after every actual publish so
// time- and count-based state never goes stale.
//
// Strategies are stateful and bound to a single registration; they are
// never shared across devices. Bind is called exactly once, before the
// loop starts.
//
// Note: the very first produced value of a registration is always
// published by the loop itself, regardless of what the strategy says.
type Strategy interface {
	// Bind attaches the clock capability. Called once before the loop starts.
	Bind(clock Clock)

	// ShouldPublish reports whether current is worth transmitting.
	// previous is the last published value, or nil if none exists.
	ShouldPublish(current, previous any) bool

	// OnPublished records that a publish actually happened.
	OnPublished()
}

// every publishes when enough time has elapsed since the last publish.
type every struct {
	interval time.Duration
	clock    Clock
	last     time.Time
	hasLast  bool
}

// Every returns a time-window strategy: publish if the elapsed time since
// the last actual publish is >= interval, as measured by the bound clock.
// An absent previous value always publishes.
func Every(interval time.Duration) Strategy {
	return &every{interval: interval, clock: SystemClock{}}
}

func (e *every) Bind(clock Clock) { e.clock = clock }

func (e *every) ShouldPublish(_, previous any) bool {
	if previous == nil || !e.hasLast {
		return true
	}
	return e.clock.Now().Sub(e.last) >= e.interval
}

func (e *every) OnPublished() {
	e.last = e.clock.Now()
	e.hasLast = true
}

// sample publishes every nth invocation since the last publish.
type sample struct {
	n     int
	count int
}

// Sample returns a count strategy: publish on every nth probe since the
// last publish. The internal counter resets only via OnPublished, so a
// publish triggered by a sibling strategy inside a composite also resets it.
func Sample(n int) Strategy {
	return &sample{n: n}
}

func (s *sample) Bind(Clock) {}

func (s *sample) ShouldPublish(_, previous any) bool {
	s.count++
	if previous == nil {
		return true
	}
	return s.count >= s.n
}

func (s *sample) OnPublished() { s.count = 0 }

// anyOf publishes if any child says yes.
type anyOf struct {
	children []Strategy
}

// Any composes strategies with logical OR: publish if any child says yes.
//
// Every child's ShouldPublish is evaluated on every cycle (no
// short-circuiting) and OnPublished is forwarded to every child when a
// publish occurs, including children that did not trigger it.
func Any(children ...Strategy) Strategy {
	return &anyOf{children: children}
}

func (a *anyOf) Bind(clock Clock) {
	for _, c := range a.children {
		c.Bind(clock)
	}
}

func (a *anyOf) ShouldPublish(current, previous any) bool {
	publish := false
	for _, c := range a.children {
		if c.ShouldPublish(current, previous) {
			publish = true
		}
	}
	return publish
}

func (a *anyOf) OnPublished() {
	for _, c := range a.children {
		c.OnPublished()
	}
}

// allOf publishes only if all children say yes.
type allOf struct {
	children []Strategy
}

// All composes strategies with logical AND: publish only if all children
// say yes. Evaluation and OnPublished forwarding follow the same
// no-short-circuit rules as Any.
func All(children ...Strategy) Strategy {
	return &allOf{children: children}
}

func (a *allOf) Bind(clock Clock) {
	for _, c := range a.children {
		c.Bind(clock)
	}
}

func (a *allOf) ShouldPublish(current, previous any) bool {
	publish := true
	for _, c := range a.children {
		if !c.ShouldPublish(current, previous) {
			publish = false
		}
	}
	return publish
}

func (a *allOf) OnPublished() {
	for _, c := range a.children {
		c.OnPublished()
	}
}
