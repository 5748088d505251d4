package deckdraft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quehorrifico/mana-tomb-cli/internal/events"
	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
	"github.com/quehorrifico/mana-tomb-cli/internal/resolver"
	"github.com/quehorrifico/mana-tomb-cli/internal/session"
)

// ErrDeckNotFound is returned when the backend has no deck with the
// requested ID.
var ErrDeckNotFound = errors.New("deckdraft: deck not found")

// ErrUnauthorized is returned when an operation requires a session the
// caller lacks. For Save it is returned before any network call is made.
var ErrUnauthorized = errors.New("deckdraft: unauthorized")

// ErrNoDraft is returned when an operation needs a current draft and none
// has been started.
var ErrNoDraft = errors.New("deckdraft: no draft in progress")

// deckAPI is the slice of the backend client the manager needs.
type deckAPI interface {
	ListDecks(ctx context.Context) ([]manatomb.Deck, error)
	GetDeck(ctx context.Context, deckID int) (*manatomb.Deck, error)
	CreateDeck(ctx context.Context, req manatomb.CreateDeckRequest) (*manatomb.Deck, error)
	UpdateDeck(ctx context.Context, deck manatomb.Deck) (*manatomb.Deck, error)
	DeleteDeck(ctx context.Context, deckID int) error
}

// cardResolver resolves card names the way every card-adding flow must:
// through the shared search outcome policy.
type cardResolver interface {
	Resolve(ctx context.Context, query string) (resolver.SearchOutcome, error)
}

// sessionReader exposes the acting identity.
type sessionReader interface {
	Current() session.Session
}

// Manager owns one DeckDraft at a time and reconciles it against the
// server's authoritative copy on save.
type Manager struct {
	client     deckAPI
	resolver   cardResolver
	sessions   sessionReader
	dispatcher *events.Dispatcher

	mu    sync.Mutex
	draft *Draft
}

// NewManager creates a Manager. The dispatcher may be nil.
func NewManager(client deckAPI, cardResolver cardResolver, sessions sessionReader, dispatcher *events.Dispatcher) *Manager {
	return &Manager{
		client:     client,
		resolver:   cardResolver,
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

// StartNew produces an empty draft with no deck ID and makes it current.
func (m *Manager) StartNew() *Draft {
	draft := &Draft{state: StateReady}
	m.setDraft(draft)
	return draft
}

// StartEdit fetches the deck by ID and materializes a draft from it. On
// failure no draft is produced and the current draft is unchanged.
func (m *Manager) StartEdit(ctx context.Context, deckID int) (*Draft, error) {
	deck, err := m.client.GetDeck(ctx, deckID)
	if err != nil {
		return nil, mapDeckError(err)
	}

	names := make([]string, len(deck.Cards))
	copy(names, deck.Cards)
	draft := &Draft{
		state:       StateReady,
		deckID:      deck.DeckID,
		name:        deck.Name,
		description: deck.Description,
		commander:   deck.Commander,
		cardNames:   names,
	}
	if draft.deckID == 0 {
		draft.deckID = deckID
	}
	m.setDraft(draft)
	return draft, nil
}

// Current returns the draft being edited, or nil.
func (m *Manager) Current() *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Discard drops the current draft without persisting anything.
func (m *Manager) Discard() {
	m.setDraft(nil)
}

// AddCard resolves name and applies the uniform ambiguity policy: an exact
// match or a singleton fuzzy set is auto-accepted into the draft (duplicate
// inserts are no-ops); a wider candidate set or a not-found outcome is
// returned untouched for the caller's disambiguation UI, without mutating
// the draft.
func (m *Manager) AddCard(ctx context.Context, name string) (resolver.SearchOutcome, error) {
	draft := m.Current()
	if draft == nil {
		return resolver.SearchOutcome{}, ErrNoDraft
	}

	outcome, err := m.resolver.Resolve(ctx, name)
	if err != nil {
		return resolver.SearchOutcome{}, err
	}

	switch {
	case outcome.Kind == resolver.OutcomeExactMatch:
		if _, err := draft.addCard(outcome.Card.Name); err != nil {
			return resolver.SearchOutcome{}, err
		}
	case outcome.Kind == resolver.OutcomeFuzzyMatches && len(outcome.Candidates) == 1:
		// A lone candidate is as good as an exact match.
		if _, err := draft.addCard(outcome.Candidates[0].Name); err != nil {
			return resolver.SearchOutcome{}, err
		}
	}
	return outcome, nil
}

// AcceptCandidate inserts a card the user picked from a disambiguation set.
func (m *Manager) AcceptCandidate(card manatomb.Card) error {
	draft := m.Current()
	if draft == nil {
		return ErrNoDraft
	}
	_, err := draft.addCard(card.Name)
	return err
}

// Save persists the current draft: create when it has no deck ID, update
// otherwise. Requires an authenticated session, checked before any network
// call. On success the persisted deck is returned and the draft is
// consumed. On failure the draft is left unmodified so the caller can retry;
// save is all-or-nothing from the client's perspective.
func (m *Manager) Save(ctx context.Context) (*manatomb.Deck, error) {
	draft := m.Current()
	if draft == nil {
		return nil, ErrNoDraft
	}

	sess := m.sessions.Current()
	if sess.Status != session.StatusAuthenticated {
		return nil, ErrUnauthorized
	}

	snap, err := draft.beginSave()
	if err != nil {
		return nil, err
	}

	var (
		saved   *manatomb.Deck
		created = snap.DeckID == 0
	)
	if created {
		saved, err = m.client.CreateDeck(ctx, manatomb.CreateDeckRequest{
			Name:        snap.Name,
			Description: snap.Description,
			Commander:   snap.Commander,
			Cards:       snap.CardNames,
			UserID:      sess.Identity.ID,
		})
	} else {
		saved, err = m.client.UpdateDeck(ctx, manatomb.Deck{
			DeckID:      snap.DeckID,
			UserID:      sess.Identity.ID,
			Name:        snap.Name,
			Description: snap.Description,
			Commander:   snap.Commander,
			Cards:       snap.CardNames,
		})
	}
	if err != nil {
		draft.failSave()
		return nil, mapDeckError(err)
	}

	// The backend may answer with a partial deck shape; fill in the fields
	// the draft already knows so callers always get a complete deck back.
	if saved.Name == "" {
		saved.Name = snap.Name
	}
	if saved.Description == "" {
		saved.Description = snap.Description
	}
	if saved.Commander == "" {
		saved.Commander = snap.Commander
	}
	if len(saved.Cards) == 0 {
		saved.Cards = snap.CardNames
	}
	if saved.UserID == 0 {
		saved.UserID = sess.Identity.ID
	}

	draft.completeSave(saved.DeckID)

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(events.NewDeckSaved(saved.DeckID, saved.Name, created))
	}
	return saved, nil
}

// DeleteDeck removes a persisted deck. Confirmation is the caller's concern;
// once invoked the operation is unconditional.
func (m *Manager) DeleteDeck(ctx context.Context, deckID int) error {
	if err := m.client.DeleteDeck(ctx, deckID); err != nil {
		return mapDeckError(err)
	}
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(events.NewDeckDeleted(deckID))
	}
	return nil
}

// ListDecks retrieves the acting user's decks.
func (m *Manager) ListDecks(ctx context.Context) ([]manatomb.Deck, error) {
	decks, err := m.client.ListDecks(ctx)
	if err != nil {
		return nil, mapDeckError(err)
	}
	return decks, nil
}

func (m *Manager) setDraft(draft *Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = draft
}

// mapDeckError recovers backend failures into the package's error kinds so
// no raw transport error crosses the component boundary unclassified.
func mapDeckError(err error) error {
	switch {
	case errors.Is(err, manatomb.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case manatomb.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrDeckNotFound, err)
	default:
		return fmt.Errorf("deckdraft: %w", err)
	}
}
