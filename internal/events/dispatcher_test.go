package events

import (
	"errors"
	"sync"
	"testing"
)

func TestDispatcher_DeliversInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()

	var order []string
	record := func(name string) *FuncObserver {
		return &FuncObserver{ObserverName: name, Fn: func(Event) error {
			order = append(order, name)
			return nil
		}}
	}
	d.Register(record("first"))
	d.Register(record("second"))
	d.Register(record("third"))

	d.Dispatch(Event{Type: TypeSessionChanged})

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("unexpected delivery order: %v", order)
	}
}

func TestDispatcher_TypeFiltering(t *testing.T) {
	d := NewDispatcher()

	var sessionEvents, deckEvents, allEvents int
	d.Register(&FuncObserver{EventType: TypeSessionChanged, Fn: func(Event) error {
		sessionEvents++
		return nil
	}})
	d.Register(&FuncObserver{EventType: TypeDeckSaved, Fn: func(Event) error {
		deckEvents++
		return nil
	}})
	d.Register(&FuncObserver{Fn: func(Event) error {
		allEvents++
		return nil
	}})

	d.Dispatch(NewSessionChanged("authenticated", "a@b.com", true))
	d.Dispatch(NewDeckSaved(42, "Burn", true))
	d.Dispatch(NewDeckDeleted(42))

	if sessionEvents != 1 {
		t.Errorf("expected 1 session event, got %d", sessionEvents)
	}
	if deckEvents != 1 {
		t.Errorf("expected 1 deck event, got %d", deckEvents)
	}
	if allEvents != 3 {
		t.Errorf("expected unfiltered observer to see all 3, got %d", allEvents)
	}
}

func TestDispatcher_ObserverErrorDoesNotStopDelivery(t *testing.T) {
	d := NewDispatcher()

	delivered := false
	d.Register(&FuncObserver{ObserverName: "broken", Fn: func(Event) error {
		return errors.New("boom")
	}})
	d.Register(&FuncObserver{ObserverName: "healthy", Fn: func(Event) error {
		delivered = true
		return nil
	}})

	d.Dispatch(Event{Type: TypeDeckSaved})
	if !delivered {
		t.Error("expected delivery to continue past a failing observer")
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	d := NewDispatcher()

	calls := 0
	observer := &FuncObserver{Fn: func(Event) error {
		calls++
		return nil
	}}
	d.Register(observer)
	if d.ObserverCount() != 1 {
		t.Fatalf("expected 1 observer, got %d", d.ObserverCount())
	}

	d.Dispatch(Event{Type: TypeDeckSaved})
	d.Unregister(observer)
	d.Dispatch(Event{Type: TypeDeckSaved})

	if calls != 1 {
		t.Errorf("expected 1 call after unregister, got %d", calls)
	}
	if d.ObserverCount() != 0 {
		t.Errorf("expected 0 observers, got %d", d.ObserverCount())
	}
}

func TestDispatcher_ConcurrentRegisterAndDispatch(t *testing.T) {
	d := NewDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Register(&FuncObserver{Fn: func(Event) error { return nil }})
		}()
		go func() {
			defer wg.Done()
			d.Dispatch(Event{Type: TypeSessionChanged})
		}()
	}
	wg.Wait()

	if d.ObserverCount() != 10 {
		t.Errorf("expected 10 observers, got %d", d.ObserverCount())
	}
}

func TestTypedData(t *testing.T) {
	event := NewDeckSaved(42, "Burn", true)

	payload, ok := TypedData[DeckSaved](event)
	if !ok {
		t.Fatal("expected DeckSaved payload")
	}
	if payload.DeckID != 42 || payload.Name != "Burn" || !payload.Created {
		t.Errorf("unexpected payload: %+v", payload)
	}

	if _, ok := TypedData[SessionChanged](event); ok {
		t.Error("expected type mismatch to report false")
	}
}
