// Package derive computes projections from current state: balances,
// paycheck urgency, budget analytics, and debt payoff. Everything in this
// package is a pure function of its inputs; results for identical inputs
// are memoized.
package derive

import "sync"

// Event is one change notification delivered to bus listeners.
type Event struct {
	Kind    string
	Payload any
}

// Listener receives events synchronously. Listeners must not trigger
// further writes during notification.
type Listener func(Event)

// Bus fans change notifications out to registered listeners. It satisfies
// the engine's Publisher interface.
type Bus struct {
	mu        sync.Mutex
	listeners []Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener for all subsequent events.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish delivers the event to every listener in subscription order,
// synchronously on the caller's goroutine.
func (b *Bus) Publish(kind string, payload any) {
	b.mu.Lock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	ev := Event{Kind: kind, Payload: payload}
	for _, l := range listeners {
		l(ev)
	}
}
