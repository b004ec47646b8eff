package events

import "sync"

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not call back into the publisher.
type Handler func(Event)

// Publisher is the narrow interface domain components depend on
type Publisher interface {
	Publish(name Name, payload interface{})
}

// Bus is an in-process publish/subscribe dispatcher
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
	wildcard []Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[Name][]Handler)}
}

// Subscribe registers a handler for one event name
func (b *Bus) Subscribe(name Name, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// SubscribeAll registers a handler for every event
func (b *Bus) SubscribeAll(handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// Publish delivers an event to named subscribers first, then wildcard ones
func (b *Bus) Publish(name Name, payload interface{}) {
	b.mu.RLock()
	named := append([]Handler(nil), b.handlers[name]...)
	all := append([]Handler(nil), b.wildcard...)
	b.mu.RUnlock()

	evt := Event{Name: name, Payload: payload}
	for _, h := range named {
		h(evt)
	}
	for _, h := range all {
		h(evt)
	}
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(Name, interface{}) {}

// OrNop returns p, or a NopPublisher when p is nil
func OrNop(p Publisher) Publisher {
	if p == nil {
		return NopPublisher{}
	}
	return p
}

// Recorder is a Publisher that keeps every event, for tests and replays
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(name Name, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: name, Payload: payload})
}

// Events returns a copy of recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events with the given name were recorded
func (r *Recorder) Count(name Name) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name == name {
			n++
		}
	}
	return n
}
