// Package deckdraft owns the in-progress edit of a deck and governs its
// transition to and from persisted state.
package deckdraft

import (
	"errors"
	"sync"
)

// ErrDraftConsumed is returned when mutating or saving a draft that has
// already been persisted. A saved draft is terminal; further edits require a
// fresh StartNew or StartEdit.
var ErrDraftConsumed = errors.New("deckdraft: draft already saved")

// State describes the draft lifecycle:
// Uninitialized → {New, Loading} → Ready → Saving → Saved | Ready (on failure).
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateSaving
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	default:
		return "invalid"
	}
}

// Draft is the mutable working copy of a deck being created or edited. It is
// exclusively owned by the editing flow that created it. All mutations are
// applied atomically with respect to each other under the draft's mutex.
type Draft struct {
	mu          sync.Mutex
	state       State
	deckID      int // 0 for a new deck; the backend allocates the real ID
	name        string
	description string
	commander   string
	cardNames   []string
}

// Snapshot is an immutable copy of a draft's contents.
type Snapshot struct {
	DeckID      int
	Name        string
	Description string
	Commander   string
	CardNames   []string
	State       State
}

// Snapshot returns a copy of the draft's current contents.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, len(d.cardNames))
	copy(names, d.cardNames)
	return Snapshot{
		DeckID:      d.deckID,
		Name:        d.name,
		Description: d.description,
		Commander:   d.commander,
		CardNames:   names,
		State:       d.state,
	}
}

// SetName sets the deck name.
func (d *Draft) SetName(name string) error {
	return d.mutate(func() { d.name = name })
}

// SetDescription sets the deck description.
func (d *Draft) SetDescription(description string) error {
	return d.mutate(func() { d.description = description })
}

// SetCommander sets the commander name.
func (d *Draft) SetCommander(commander string) error {
	return d.mutate(func() { d.commander = commander })
}

// RemoveCard removes a card name from the draft. Removing a name that is not
// present is a no-op.
func (d *Draft) RemoveCard(name string) error {
	return d.mutate(func() {
		for i, existing := range d.cardNames {
			if existing == name {
				d.cardNames = append(d.cardNames[:i], d.cardNames[i+1:]...)
				return
			}
		}
	})
}

// addCard inserts a card name, suppressing duplicates (case-sensitive). The
// insert is idempotent: adding a name already present is a no-op, not an
// error. Reports whether the name was newly added.
func (d *Draft) addCard(name string) (bool, error) {
	added := false
	err := d.mutate(func() {
		for _, existing := range d.cardNames {
			if existing == name {
				return
			}
		}
		d.cardNames = append(d.cardNames, name)
		added = true
	})
	return added, err
}

// mutate applies fn under the draft mutex, rejecting edits to a consumed or
// in-flight draft.
func (d *Draft) mutate(fn func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateSaved:
		return ErrDraftConsumed
	case StateSaving:
		return errors.New("deckdraft: draft is being saved")
	}
	fn()
	return nil
}

// beginSave transitions Ready → Saving and returns the snapshot to persist.
func (d *Draft) beginSave() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateSaved:
		return Snapshot{}, ErrDraftConsumed
	case StateSaving:
		return Snapshot{}, errors.New("deckdraft: save already in progress")
	}
	d.state = StateSaving

	names := make([]string, len(d.cardNames))
	copy(names, d.cardNames)
	return Snapshot{
		DeckID:      d.deckID,
		Name:        d.name,
		Description: d.description,
		Commander:   d.commander,
		CardNames:   names,
		State:       d.state,
	}, nil
}

// completeSave marks the draft consumed after a successful persist.
func (d *Draft) completeSave(deckID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deckID = deckID
	d.state = StateSaved
}

// failSave returns the draft to Ready, leaving its contents untouched so the
// caller can retry.
func (d *Draft) failSave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateSaving {
		d.state = StateReady
	}
}
