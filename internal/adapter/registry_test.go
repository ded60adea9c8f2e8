package adapter

import (
	"errors"
	"testing"
)

type fakeSensor struct{ name string }

func TestRegistry_ResolveLive(t *testing.T) {
	r := NewRegistry(false)
	live := &fakeSensor{name: "live"}
	dry := &fakeSensor{name: "dry"}

	if err := r.Register("sensor", live, dry); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	got, err := r.Resolve("sensor")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != live {
		t.Error("Resolve() should return the live instance when dry-run is off")
	}
}

func TestRegistry_ResolveDryRun(t *testing.T) {
	r := NewRegistry(true)
	live := &fakeSensor{name: "live"}
	dry := &fakeSensor{name: "dry"}

	if err := r.Register("sensor", live, dry); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	got, _ := r.Resolve("sensor")
	if got != dry {
		t.Error("Resolve() should return the dry-run alternate when dry-run is on")
	}
}

func TestRegistry_DryRunWithoutAlternate(t *testing.T) {
	r := NewRegistry(true)
	live := &fakeSensor{name: "live"}

	if err := r.Register("sensor", live, nil); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	got, _ := r.Resolve("sensor")
	if got != live {
		t.Error("ports without a dry-run alternate keep their live instance")
	}
}

func TestRegistry_UnknownPort(t *testing.T) {
	r := NewRegistry(false)

	if _, err := r.Resolve("missing"); !errors.Is(err, ErrUnknownPort) {
		t.Errorf("Resolve() error = %v, want ErrUnknownPort", err)
	}
	if r.Has("missing") {
		t.Error("Has() should be false for unregistered ports")
	}
}

func TestRegistry_DuplicatePort(t *testing.T) {
	r := NewRegistry(false)

	if err := r.Register("sensor", &fakeSensor{}, nil); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := r.Register("sensor", &fakeSensor{}, nil); !errors.Is(err, ErrDuplicatePort) {
		t.Errorf("second Register() error = %v, want ErrDuplicatePort", err)
	}
}

func TestRegistry_InvalidRegistrations(t *testing.T) {
	r := NewRegistry(false)

	if err := r.Register("", &fakeSensor{}, nil); !errors.Is(err, ErrInvalidPort) {
		t.Errorf("empty port name: error = %v, want ErrInvalidPort", err)
	}
	if err := r.Register("sensor", nil, &fakeSensor{}); !errors.Is(err, ErrInvalidPort) {
		t.Errorf("nil live instance: error = %v, want ErrInvalidPort", err)
	}
}
