package bridge

import (
	"sync"
	"time"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
)

// publishRecord captures one transport publish for assertions.
type publishRecord struct {
	Topic    string
	Payload  string
	Retained bool
}

// fakeTransport records publishes and subscriptions and can inject
// inbound messages into subscribed handlers.
type fakeTransport struct {
	mu            sync.Mutex
	published     []publishRecord
	subscriptions map[string]mqtt.MessageHandler

	publishErr   error
	subscribeErr error
	closed       bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{subscriptions: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeTransport) Publish(topic string, payload []byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishRecord{
		Topic:    topic,
		Payload:  string(payload),
		Retained: retained,
	})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscriptions[topic] = handler
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// deliver injects one inbound message to the handler subscribed on topic.
func (f *fakeTransport) deliver(topic string, payload []byte) error {
	f.mu.Lock()
	handler, ok := f.subscriptions[topic]
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return handler(topic, payload)
}

// records returns a snapshot of all publishes so far.
func (f *fakeTransport) records() []publishRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishRecord, len(f.published))
	copy(out, f.published)
	return out
}

// recordsTo returns the publishes addressed to one topic.
func (f *fakeTransport) recordsTo(topic string) []publishRecord {
	var out []publishRecord
	for _, rec := range f.records() {
		if rec.Topic == topic {
			out = append(out, rec)
		}
	}
	return out
}

// subscribed reports whether an exact topic has a subscription.
func (f *fakeTransport) subscribed(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.subscriptions[topic]
	return ok
}

// fixedClock returns a constant time.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// capturingLogger records log calls by level for assertions.
type capturingLogger struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newCapturingLogger() *capturingLogger {
	return &capturingLogger{entries: make(map[string][]string)}
}

func (l *capturingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[level] = append(l.entries[level], msg)
}

func (l *capturingLogger) Debug(msg string, args ...any) { l.record("debug", msg) }
func (l *capturingLogger) Info(msg string, args ...any)  { l.record("info", msg) }
func (l *capturingLogger) Warn(msg string, args ...any)  { l.record("warn", msg) }
func (l *capturingLogger) Error(msg string, args ...any) { l.record("error", msg) }

// count returns how many messages were logged at a level.
func (l *capturingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[level])
}
