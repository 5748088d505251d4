// Package resolver turns a free-text card name query into a resolved card or
// a disambiguation set, following the backend's name-matching semantics.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
)

// ErrInvalidQuery is returned for empty or whitespace-only queries. The
// backend is never contacted in that case.
var ErrInvalidQuery = errors.New("resolver: invalid query")

// ErrLookupFailed is returned when the backend could not be reached or
// answered with an error. It means "could not determine", as opposed to the
// NotFound outcome which means "determined: no such card".
var ErrLookupFailed = errors.New("resolver: lookup failed")

// OutcomeKind identifies which variant of a SearchOutcome holds.
type OutcomeKind int

const (
	// OutcomeExactMatch means the query resolved to a single unambiguous card.
	OutcomeExactMatch OutcomeKind = iota

	// OutcomeFuzzyMatches means the query produced candidate cards, in the
	// backend's relevance order.
	OutcomeFuzzyMatches

	// OutcomeNotFound means the backend determined no card matches the query.
	OutcomeNotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeExactMatch:
		return "exact_match"
	case OutcomeFuzzyMatches:
		return "fuzzy_matches"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// SearchOutcome is the tagged result of a name query. Exactly one variant
// holds: Card is set for OutcomeExactMatch, Candidates for
// OutcomeFuzzyMatches, neither for OutcomeNotFound.
type SearchOutcome struct {
	Kind       OutcomeKind
	Card       *manatomb.Card
	Candidates []manatomb.Card
}

// cardAPI is the slice of the backend client the resolver needs.
type cardAPI interface {
	LookupCard(ctx context.Context, name string) (*manatomb.CardLookupResult, error)
	RandomCard(ctx context.Context) (*manatomb.Card, error)
}

// Resolver resolves card name queries against the backend. It performs no
// caching and no re-ranking: each Resolve call issues exactly one lookup,
// and the backend's candidate ordering is authoritative.
type Resolver struct {
	client cardAPI
}

// New creates a Resolver backed by the given client.
func New(client cardAPI) *Resolver {
	return &Resolver{client: client}
}

// Resolve resolves a user-typed name fragment into zero, one, or many cards.
func (r *Resolver) Resolve(ctx context.Context, query string) (SearchOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return SearchOutcome{}, ErrInvalidQuery
	}

	result, err := r.client.LookupCard(ctx, query)
	if err != nil {
		if manatomb.IsNotFound(err) {
			return SearchOutcome{Kind: OutcomeNotFound}, nil
		}
		return SearchOutcome{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	switch {
	case result.ExactMatch != nil:
		return SearchOutcome{Kind: OutcomeExactMatch, Card: result.ExactMatch}, nil
	case len(result.FuzzyMatches) > 0:
		return SearchOutcome{Kind: OutcomeFuzzyMatches, Candidates: result.FuzzyMatches}, nil
	default:
		return SearchOutcome{Kind: OutcomeNotFound}, nil
	}
}

// ResolveRandom fetches a random card. A degenerate resolution with no query.
func (r *Resolver) ResolveRandom(ctx context.Context) (*manatomb.Card, error) {
	card, err := r.client.RandomCard(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return card, nil
}
