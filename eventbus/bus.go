// Package eventbus implements the process-wide typed pub/sub used to
// fan navigation and transport events out to subscribers (spec §4.4).
package eventbus

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	id      uuid.UUID
	handler func(Event)
}

// Bus is a typed pub/sub keyed by each event's Type() tag. Handler
// invocation is synchronous and ordered by subscription time.
//
// Publish takes a brief lock only to snapshot the handler list for
// the event's type, then invokes handlers outside the lock (spec §5:
// "Event bus publish briefly acquires a mutex"). This is what makes
// the bus reentrancy-safe for Subscribe/Unsubscribe called from
// within a handler, for any event type, including the one currently
// being published.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]subscription
}

// New creates an empty Bus. Tests that need isolation from other
// tests construct their own instead of using Default (spec §9: "keep
// it a singleton only if tests can reset it between runs").
func New() *Bus {
	return &Bus{handlers: make(map[string][]subscription)}
}

var defaultBus = New()

// Default returns the process-wide singleton Bus used by cmd/x30ctl.
func Default() *Bus { return defaultBus }

// Subscribe registers handler for events of type T and returns a
// subscription id that Unsubscribe accepts. T must be one of the
// concrete Event variants in this package (e.g. NetworkError,
// QueryStatus).
func Subscribe[T Event](b *Bus, handler func(T)) uuid.UUID {
	var zero T
	typeTag := zero.Type()

	id := uuid.New()
	wrapped := func(e Event) {
		if ev, ok := e.(T); ok {
			handler(ev)
		}
	}

	b.mu.Lock()
	b.handlers[typeTag] = append(b.handlers[typeTag], subscription{id: id, handler: wrapped})
	b.mu.Unlock()

	return id
}

// Unsubscribe removes the subscription id registered for typeTag. A
// no-op if the id isn't found.
func Unsubscribe(b *Bus, typeTag string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[typeTag]
	for i, s := range subs {
		if s.id == id {
			b.handlers[typeTag] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish fans event out to every handler subscribed to its Type(),
// in subscription order. Publishing an event with no subscribers logs
// a warning and is otherwise a no-op (spec §4.4).
func (b *Bus) Publish(event Event) {
	typeTag := event.Type()

	b.mu.Lock()
	subs := append([]subscription(nil), b.handlers[typeTag]...)
	b.mu.Unlock()

	if len(subs) == 0 {
		log.Printf("eventbus: publish %s with no subscribers", typeTag)
		return
	}

	for _, s := range subs {
		s.handler(event)
	}
}
