package bridge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge-core/internal/strategy"
)

// Availability payloads, retained per device.
const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

// errorEvent is the structured payload published to the error topics.
type errorEvent struct {
	ID        string `json:"id"`
	Device    string `json:"device"`
	Event     string `json:"event"`
	Class     string `json:"class,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Event discriminators on the error topics.
const (
	eventError     = "error"
	eventRecovered = "recovered"
)

// Reporter emits structured error, recovery, and availability events.
//
// Reporting is deliberately infallible from the caller's point of view:
// a failure to transmit an event is logged locally and swallowed, so the
// error-reporting path can never itself take a device down.
type Reporter struct {
	transport Transport
	topics    mqtt.Topics
	clock     strategy.Clock
	logger    Logger
}

// NewReporter creates a Reporter publishing under the given topic scheme.
func NewReporter(transport Transport, topics mqtt.Topics, clock strategy.Clock, logger Logger) *Reporter {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Reporter{transport: transport, topics: topics, clock: clock, logger: logger}
}

// Error publishes one structured error event for a device, to both the
// device's error topic and the bridge-wide error topic.
func (r *Reporter) Error(device, class string, err error) {
	event := errorEvent{
		ID:        uuid.NewString(),
		Device:    deviceLabel(device),
		Event:     eventError,
		Class:     class,
		Message:   err.Error(),
		Timestamp: r.clock.Now().UTC().Format(time.RFC3339),
	}

	r.logger.Error("device error",
		"device", event.Device,
		"class", class,
		"error", err,
	)
	r.emit(device, event)
}

// Recovered publishes a single recovery notice for a device.
func (r *Reporter) Recovered(device string) {
	event := errorEvent{
		ID:        uuid.NewString(),
		Device:    deviceLabel(device),
		Event:     eventRecovered,
		Timestamp: r.clock.Now().UTC().Format(time.RFC3339),
	}

	r.logger.Info("device recovered", "device", event.Device)
	r.emit(device, event)
}

// emit marshals and publishes an event, swallowing transmission failures.
func (r *Reporter) emit(device string, event errorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to encode error event", "device", event.Device, "error", err)
		return
	}

	if err := r.transport.Publish(r.topics.DeviceError(device), payload, false); err != nil {
		r.logger.Error("failed to publish error event", "device", event.Device, "error", err)
	}

	// The root device's error topic is already the bridge-wide one.
	if device != "" {
		if err := r.transport.Publish(r.topics.BridgeError(), payload, false); err != nil {
			r.logger.Error("failed to publish bridge error event", "device", event.Device, "error", err)
		}
	}
}

// Available publishes the retained online announcement for a device.
func (r *Reporter) Available(device string) {
	r.announce(device, availabilityOnline)
}

// Unavailable publishes the retained offline announcement for a device.
func (r *Reporter) Unavailable(device string) {
	r.announce(device, availabilityOffline)
}

func (r *Reporter) announce(device, state string) {
	if err := r.transport.Publish(r.topics.Availability(device), []byte(state), true); err != nil {
		r.logger.Error("failed to publish availability",
			"device", deviceLabel(device),
			"state", state,
			"error", err,
		)
	}
}

// deviceLabel renders the root device's empty name for logs and events.
func deviceLabel(device string) string {
	if device == "" {
		return "root"
	}
	return device
}
