package bridge

import (
	"sync"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/mqtt"
)

// dispatchFunc delivers one inbound message to a device. Built by the
// supervisor per registration; error containment happens inside it, so
// the router itself never sees handler failures.
type dispatchFunc func(topic, payload string)

// Router maps inbound command topics to registered device handlers.
//
// Routes are installed during the supervisor's Registration phase — one
// per Command registration and one per Device registration — and the
// matching subscriptions are issued before any device unit launches, so
// no inbound command is lost to a startup race.
type Router struct {
	topics    mqtt.Topics
	transport Transport
	logger    Logger

	mu     sync.RWMutex
	routes map[string]dispatchFunc
}

// NewRouter creates a Router for the given topic scheme.
func NewRouter(transport Transport, topics mqtt.Topics, logger Logger) *Router {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Router{
		topics:    topics,
		transport: transport,
		logger:    logger,
		routes:    make(map[string]dispatchFunc),
	}
}

// Add installs the dispatch function for one device name.
func (r *Router) Add(name string, dispatch dispatchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = dispatch
}

// SubscribeAll issues one exact-topic subscription per installed route.
//
// Returns:
//   - error: The first subscription failure, which aborts startup
func (r *Router) SubscribeAll() error {
	r.mu.RLock()
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	r.mu.RUnlock()

	for _, name := range names {
		if err := r.transport.Subscribe(r.topics.Set(name), r.Route); err != nil {
			return err
		}
	}
	return nil
}

// Route delivers one inbound message to the matching device handler.
//
// The device name is recovered from the topic by plain string matching.
// Topics that do not match the expected {prefix}/{name}/set shape are
// silently dropped; a recovered name with no installed route logs a
// warning and drops the message. Dispatch always goes through the error
// isolation boundary (inside the dispatch function), so a handler
// failure never stops subsequent messages.
func (r *Router) Route(topic string, payload []byte) error {
	name, ok := r.topics.DeviceFromSet(topic)
	if !ok {
		return nil
	}

	r.mu.RLock()
	dispatch, found := r.routes[name]
	r.mu.RUnlock()

	if !found {
		r.logger.Warn("command for unknown device dropped",
			"topic", topic,
			"device", deviceLabel(name),
		)
		return nil
	}

	dispatch(topic, string(payload))
	return nil
}
