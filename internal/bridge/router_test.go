package bridge

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
)

func newTestRouter(transport Transport, logger Logger) *Router {
	return NewRouter(transport, mqtt.Topics{Prefix: "test/bridge"}, logger)
}

func TestRouterSubscribeAllIssuesExactTopics(t *testing.T) {
	transport := newFakeTransport()
	router := newTestRouter(transport, noopLogger{})

	router.Add("relay", func(topic, payload string) {})
	router.Add("door", func(topic, payload string) {})

	if err := router.SubscribeAll(); err != nil {
		t.Fatalf("SubscribeAll() error = %v", err)
	}
	for _, topic := range []string{"test/bridge/relay/set", "test/bridge/door/set"} {
		if !transport.subscribed(topic) {
			t.Errorf("no subscription for %q", topic)
		}
	}
}

func TestRouterSubscribeAllAbortsOnFailure(t *testing.T) {
	transport := newFakeTransport()
	transport.subscribeErr = errors.New("broker refused")
	router := newTestRouter(transport, noopLogger{})
	router.Add("relay", func(topic, payload string) {})

	if err := router.SubscribeAll(); err == nil {
		t.Error("SubscribeAll() error = nil, want subscription failure")
	}
}

func TestRouterRoutesToMatchingDevice(t *testing.T) {
	router := newTestRouter(newFakeTransport(), noopLogger{})

	var gotTopic, gotPayload string
	router.Add("relay", func(topic, payload string) {
		gotTopic, gotPayload = topic, payload
	})

	if err := router.Route("test/bridge/relay/set", []byte("on")); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if gotTopic != "test/bridge/relay/set" || gotPayload != "on" {
		t.Errorf("dispatched (%q, %q), want the raw topic and payload", gotTopic, gotPayload)
	}
}

func TestRouterDropsMalformedTopicSilently(t *testing.T) {
	logger := newCapturingLogger()
	router := newTestRouter(newFakeTransport(), logger)

	dispatched := false
	router.Add("relay", func(topic, payload string) { dispatched = true })

	malformed := []string{
		"test/bridge/relay",
		"test/bridge/relay/state",
		"other/relay/set",
		"test/bridge/floor1/relay/set",
	}
	for _, topic := range malformed {
		if err := router.Route(topic, []byte("on")); err != nil {
			t.Errorf("Route(%q) error = %v, want silent drop", topic, err)
		}
	}

	if dispatched {
		t.Error("malformed topic reached a handler")
	}
	if n := logger.count("warn"); n != 0 {
		t.Errorf("got %d warnings for malformed topics, want 0 (silent drop)", n)
	}
}

func TestRouterWarnsOnUnknownDevice(t *testing.T) {
	logger := newCapturingLogger()
	router := newTestRouter(newFakeTransport(), logger)

	if err := router.Route("test/bridge/ghost/set", []byte("on")); err != nil {
		t.Fatalf("Route() error = %v, want warn-and-drop", err)
	}
	if n := logger.count("warn"); n != 1 {
		t.Errorf("got %d warnings for an unknown device, want 1", n)
	}
}

func TestRouterContinuesAfterHandlerFailure(t *testing.T) {
	transport := newFakeTransport()
	boundary := newTestBoundary(transport)
	router := newTestRouter(transport, noopLogger{})

	var delivered []string
	router.Add("relay", func(topic, payload string) {
		boundary.Dispatch("relay", func() (any, error) {
			delivered = append(delivered, payload)
			if payload == "bad" {
				return nil, errSensorRead
			}
			return nil, nil
		})
	})

	router.Route("test/bridge/relay/set", []byte("bad"))
	router.Route("test/bridge/relay/set", []byte("on"))

	if len(delivered) != 2 {
		t.Fatalf("delivered %d messages, want 2: a failed dispatch must not stop routing", len(delivered))
	}
}
