package engine

import (
	"sync"
	"time"
)

// SubscriberFunc is a callback invoked when an event is emitted.
type SubscriberFunc func(Event)

type subscription struct {
	fn    SubscriberFunc
	types map[EventType]struct{} // nil subscribes to everything
}

// EventBus provides synchronous, typed event dispatch for the fleet engine.
// Subscribers run in registration order on the emitting goroutine, so by the
// time a poller's refresh or an executor tick returns, every handler has
// observed its events. Subscriptions last for the life of the engine.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewEventBus creates a new EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a callback for all event types.
func (eb *EventBus) Subscribe(fn SubscriberFunc) {
	eb.mu.Lock()
	eb.subs = append(eb.subs, subscription{fn: fn})
	eb.mu.Unlock()
}

// SubscribeTypes registers a callback only for the given event types.
func (eb *EventBus) SubscribeTypes(fn SubscriberFunc, types ...EventType) {
	filter := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	eb.mu.Lock()
	eb.subs = append(eb.subs, subscription{fn: fn, types: filter})
	eb.mu.Unlock()
}

// EmitPayload wraps a payload in an event envelope, stamps it, and emits it.
// All fleet events are dispatched through here.
func (eb *EventBus) EmitPayload(t EventType, payload interface{}) {
	eb.Emit(Event{Type: t, Payload: payload})
}

// Emit dispatches an event synchronously to all matching subscribers. The
// subscriber list is copied under the read lock, so a handler may register
// further subscriptions without deadlocking.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	subs := make([]subscription, len(eb.subs))
	copy(subs, eb.subs)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.types != nil {
			if _, ok := s.types[evt.Type]; !ok {
				continue
			}
		}
		s.fn(evt)
	}
}
