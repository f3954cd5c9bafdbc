package pubsub

import "sync"

// Topic names a class of messages on the bus
type Topic string

// Handler receives messages published to a subscribed topic
type Handler func(payload interface{})

// Bus is a minimal synchronous publish/subscribe bus. State containers
// publish facts ("state changed", "pause requested") instead of reaching into
// each other, and a coordinator subscribes. Handlers run inline on the
// publisher's goroutine, preserving the single-threaded event ordering the
// engine relies on.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]Handler
}

// New creates an empty bus
func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe func
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers the payload to every handler subscribed to the topic, in
// unspecified order. Publishing to a topic with no subscribers is a no-op.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
