package strategy

import (
	"testing"
	"time"
)

// fakeClock is a controllable Clock for deterministic tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

// recordingStrategy records calls and returns a fixed answer.
type recordingStrategy struct {
	answer         bool
	shouldCalls    int
	publishedCalls int
	bound          Clock
}

func (r *recordingStrategy) Bind(c Clock) { r.bound = c }

func (r *recordingStrategy) ShouldPublish(_, _ any) bool {
	r.shouldCalls++
	return r.answer
}

func (r *recordingStrategy) OnPublished() { r.publishedCalls++ }

func TestEvery(t *testing.T) {
	clock := newFakeClock()
	s := Every(30 * time.Second)
	s.Bind(clock)

	if !s.ShouldPublish(1.0, nil) {
		t.Fatal("absent previous must always publish")
	}
	s.OnPublished()

	clock.advance(29 * time.Second)
	if s.ShouldPublish(2.0, 1.0) {
		t.Error("should not publish before the window elapses")
	}

	clock.advance(1 * time.Second)
	if !s.ShouldPublish(2.0, 1.0) {
		t.Error("should publish at exactly the window boundary")
	}
	s.OnPublished()

	// OnPublished resets the reference point.
	if s.ShouldPublish(3.0, 2.0) {
		t.Error("should not publish immediately after publishing")
	}
}

func TestEvery_NeverPublishedYet(t *testing.T) {
	s := Every(time.Hour)
	s.Bind(newFakeClock())

	// No OnPublished has happened, so there is no reference point yet.
	if !s.ShouldPublish(1.0, 1.0) {
		t.Error("should publish when no publish has ever happened")
	}
}

func TestSample(t *testing.T) {
	s := Sample(3)
	s.Bind(newFakeClock())

	prev := any(1.0)
	want := []bool{false, false, true}
	for i, w := range want {
		if got := s.ShouldPublish(2.0, prev); got != w {
			t.Errorf("call %d: ShouldPublish = %v, want %v", i+1, got, w)
		}
	}
	s.OnPublished()

	// Counter resets only via OnPublished.
	if s.ShouldPublish(3.0, prev) {
		t.Error("counter should restart after OnPublished")
	}
}

func TestSample_CounterNotResetWithoutPublish(t *testing.T) {
	s := Sample(2)

	s.ShouldPublish(1.0, 0.0) // count 1, no
	if !s.ShouldPublish(1.0, 0.0) {
		t.Fatal("count 2 should publish")
	}
	// No OnPublished: counter keeps growing, stays above the threshold.
	if !s.ShouldPublish(1.0, 0.0) {
		t.Error("without OnPublished the counter must not reset")
	}
}

func TestAny_EvaluatesEveryChild(t *testing.T) {
	first := &recordingStrategy{answer: true}
	second := &recordingStrategy{answer: false}
	s := Any(first, second)

	if !s.ShouldPublish(1.0, 0.0) {
		t.Fatal("Any should publish when one child says yes")
	}
	if first.shouldCalls != 1 || second.shouldCalls != 1 {
		t.Errorf("both children must be evaluated, got %d and %d calls",
			first.shouldCalls, second.shouldCalls)
	}

	s.OnPublished()
	if first.publishedCalls != 1 || second.publishedCalls != 1 {
		t.Error("OnPublished must be forwarded to every child")
	}
}

func TestAll_EvaluatesEveryChild(t *testing.T) {
	first := &recordingStrategy{answer: false}
	second := &recordingStrategy{answer: true}
	s := All(first, second)

	if s.ShouldPublish(1.0, 0.0) {
		t.Fatal("All should not publish when one child says no")
	}
	if first.shouldCalls != 1 || second.shouldCalls != 1 {
		t.Errorf("both children must be evaluated even after a no, got %d and %d calls",
			first.shouldCalls, second.shouldCalls)
	}

	first.answer = true
	if !s.ShouldPublish(1.0, 0.0) {
		t.Error("All should publish when every child says yes")
	}
}

func TestComposite_BindForwarded(t *testing.T) {
	clock := newFakeClock()
	first := &recordingStrategy{}
	second := &recordingStrategy{}

	Any(first, All(second)).Bind(clock)

	if first.bound != clock || second.bound != clock {
		t.Error("Bind must reach every nested child")
	}
}

func TestAnyAll_SampleStateStaysFresh(t *testing.T) {
	// A Sample child inside Any must have its counter advanced and reset
	// even when the Every sibling is what triggers the publish.
	clock := newFakeClock()
	counter := Sample(2)
	timer := Every(time.Second)
	s := Any(timer, counter)
	s.Bind(clock)

	s.ShouldPublish(1.0, nil) // first value, both children consulted
	s.OnPublished()

	clock.advance(time.Second)
	if !s.ShouldPublish(2.0, 1.0) { // timer fires, counter at 2 also fires
		t.Fatal("expected composite publish")
	}
	s.OnPublished()

	// Counter was reset by the composite publish.
	if counter.ShouldPublish(3.0, 2.0) {
		t.Error("sample counter should have been reset by composite OnPublished")
	}
}
