package bridge

import (
	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
)

// Transport is the pub/sub capability the runtime consumes. It is the
// one shared connection for the whole process: the supervisor owns its
// lifecycle and every device publishes through it.
//
// Satisfied by *mqtt.Client; tests substitute an in-memory fake.
type Transport interface {
	// Publish sends a payload to a topic. retained marks the message for
	// delivery to future subscribers (state/availability topics).
	Publish(topic string, payload []byte, retained bool) error

	// Subscribe registers a callback for messages on a topic. The
	// callback runs on transport goroutines; returned errors are logged
	// by the transport, not redelivered.
	Subscribe(topic string, handler mqtt.MessageHandler) error

	// Close disconnects from the broker.
	Close() error
}

// Logger is the narrow logging interface the runtime needs.
// Satisfied by logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
