// Package events implements the observer pattern used to fan client state
// transitions out to interested consumers (display layer, debug logging).
package events

import (
	"log/slog"
	"sync"
)

// Event is a domain event delivered to observers.
type Event struct {
	// Type is the event type (e.g., "session:changed", "deck:saved")
	Type string

	// Data contains the typed event payload (one of the types in messages.go).
	Data any
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent is called when an event is dispatched.
	OnEvent(event Event) error

	// Name returns a human-readable name for this observer, for logging.
	Name() string

	// ShouldHandle reports whether this observer wants the given event type.
	ShouldHandle(eventType string) bool
}

// Dispatcher distributes events to registered observers. Observers are
// notified sequentially, in registration order, on the dispatching
// goroutine, so a subscriber sees every state transition before the
// owning operation returns. Thread-safe.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds an observer. It will receive all future events its
// ShouldHandle accepts.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, observer)
}

// Unregister removes a previously registered observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

// Dispatch delivers an event to all registered observers. An observer error
// is logged and does not stop delivery to the remaining observers.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			slog.Warn("observer failed to handle event",
				"observer", observer.Name(), "type", event.Type, "error", err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// TypedData extracts a typed payload from an Event. Returns the zero value
// and false if the payload is not of the expected type.
func TypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
