package manatomb

// User represents the authenticated account as reported by the backend.
// The /me probe only returns the email, so Username may mirror Email until a
// richer identity endpoint exists.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small"`
	Normal     string `json:"normal"`
	Large      string `json:"large"`
	PNG        string `json:"png"`
	ArtCrop    string `json:"art_crop"`
	BorderCrop string `json:"border_crop"`
}

// Card represents an oracle card as served by the mana-tomb backend.
// Cards are immutable values; they are re-fetched wholesale on each lookup
// and never mutated by the client.
type Card struct {
	Name           string    `json:"name"`
	ManaCost       string    `json:"mana_cost"`
	TypeLine       string    `json:"type_line"`
	OracleText     string    `json:"oracle_text"`
	ImageURIs      ImageURIs `json:"image_uris"`
	SetCode        string    `json:"set"`
	SetName        string    `json:"set_name"`
	SetURI         string    `json:"set_uri"`
	SetID          string    `json:"set_id"`
	SetType        string    `json:"set_type"`
	SetSearchURI   string    `json:"set_search_uri"`
	ScryfallSetURI string    `json:"scryfall_set_uri"`
}

// CardLookupResult is the tagged response of GET /card/:name. Exactly one of
// the two fields is populated: a single unambiguous card, or the backend's
// relevance-ordered candidate list.
type CardLookupResult struct {
	ExactMatch   *Card  `json:"exact_match,omitempty"`
	FuzzyMatches []Card `json:"fuzzy_matches,omitempty"`
}

// Deck is a persisted commander deck. DeckID is allocated by the backend on
// create; the client never assigns it. Cards is the plain card-name form
// stored by the backend.
type Deck struct {
	DeckID      int      `json:"deck_id"`
	UserID      int      `json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Commander   string   `json:"commander"`
	Cards       []string `json:"cards"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// CreateDeckRequest is the POST /decks/create body.
type CreateDeckRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Commander   string   `json:"commander"`
	Cards       []string `json:"cards"`
	UserID      int      `json:"user_id"`
}

// RegisterResult is the POST /register success body.
type RegisterResult struct {
	ID int `json:"id"`
}

type meResponse struct {
	Email string `json:"email"`
}
