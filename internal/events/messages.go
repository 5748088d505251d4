package events

// Event types dispatched by the client core.
const (
	// TypeSessionChanged fires on every session state transition.
	TypeSessionChanged = "session:changed"

	// TypeDeckSaved fires after a deck draft is successfully persisted.
	TypeDeckSaved = "deck:saved"

	// TypeDeckDeleted fires after a deck is deleted on the server.
	TypeDeckDeleted = "deck:deleted"
)

// SessionChanged is the payload of TypeSessionChanged.
type SessionChanged struct {
	Status        string `json:"status"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// DeckSaved is the payload of TypeDeckSaved.
type DeckSaved struct {
	DeckID  int    `json:"deckId"`
	Name    string `json:"name"`
	Created bool   `json:"created"` // true for create, false for update
}

// DeckDeleted is the payload of TypeDeckDeleted.
type DeckDeleted struct {
	DeckID int `json:"deckId"`
}

// NewSessionChanged builds a TypeSessionChanged event.
func NewSessionChanged(status, email string, authenticated bool) Event {
	return Event{
		Type: TypeSessionChanged,
		Data: SessionChanged{Status: status, Email: email, Authenticated: authenticated},
	}
}

// NewDeckSaved builds a TypeDeckSaved event.
func NewDeckSaved(deckID int, name string, created bool) Event {
	return Event{
		Type: TypeDeckSaved,
		Data: DeckSaved{DeckID: deckID, Name: name, Created: created},
	}
}

// NewDeckDeleted builds a TypeDeckDeleted event.
func NewDeckDeleted(deckID int) Event {
	return Event{
		Type: TypeDeckDeleted,
		Data: DeckDeleted{DeckID: deckID},
	}
}
