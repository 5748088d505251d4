// Package cardlookup provides card detail lookup with a local cache. It
// integrates the storage layer and the name resolver: detail views are
// served from the cache when fresh, falling back to the backend and, when
// the backend is unreachable, to stale cache entries.
//
// The resolver itself never caches; each resolve is one independent
// lookup. Only this detail-enrichment layer does.
package cardlookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
	"github.com/quehorrifico/mana-tomb-cli/internal/resolver"
	"github.com/quehorrifico/mana-tomb-cli/internal/storage"
)

// ErrCacheDisabled is returned by cache-only operations when no cache is
// configured.
var ErrCacheDisabled = errors.New("cardlookup: card cache is disabled")

// cardStore is the slice of the storage layer the service needs.
type cardStore interface {
	GetCard(ctx context.Context, name string) (*storage.Card, error)
	SaveCard(ctx context.Context, card *storage.Card) error
	SearchCards(ctx context.Context, fragment string, limit int) ([]*storage.Card, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// cardSource resolves names against the backend.
type cardSource interface {
	Resolve(ctx context.Context, query string) (resolver.SearchOutcome, error)
	ResolveRandom(ctx context.Context) (*manatomb.Card, error)
}

// Service provides cache-first card detail lookup.
type Service struct {
	store          cardStore
	source         cardSource
	staleThreshold time.Duration
}

// Options configures the card lookup service.
type Options struct {
	// StaleThreshold is how old cached data can be before the backend is
	// consulted again. Default: 7 days.
	StaleThreshold time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{StaleThreshold: 7 * 24 * time.Hour}
}

// NewService creates a card lookup service. The store may be nil, in which
// case every lookup goes to the backend.
func NewService(store cardStore, source cardSource, options Options) *Service {
	if options.StaleThreshold == 0 {
		options.StaleThreshold = DefaultOptions().StaleThreshold
	}
	return &Service{
		store:          store,
		source:         source,
		staleThreshold: options.StaleThreshold,
	}
}

// Lookup resolves a name into a detail outcome. A fresh cache entry for the
// exact name short-circuits the backend entirely. An exact backend match is
// written back to the cache. When the backend cannot be reached a stale
// cache entry, if present, is served as fallback.
func (s *Service) Lookup(ctx context.Context, name string) (resolver.SearchOutcome, error) {
	var cached *storage.Card
	if s.store != nil {
		var err error
		cached, err = s.store.GetCard(ctx, name)
		if err != nil && !errors.Is(err, storage.ErrCardNotCached) {
			return resolver.SearchOutcome{}, fmt.Errorf("cardlookup: %w", err)
		}
		if cached != nil && time.Since(cached.FetchedAt) < s.staleThreshold {
			return resolver.SearchOutcome{
				Kind: resolver.OutcomeExactMatch,
				Card: fromStorageCard(cached),
			}, nil
		}
	}

	outcome, err := s.source.Resolve(ctx, name)
	if err != nil {
		if cached != nil && errors.Is(err, resolver.ErrLookupFailed) {
			// Stale beats nothing when the backend is down.
			return resolver.SearchOutcome{
				Kind: resolver.OutcomeExactMatch,
				Card: fromStorageCard(cached),
			}, nil
		}
		return resolver.SearchOutcome{}, err
	}

	if outcome.Kind == resolver.OutcomeExactMatch && s.store != nil {
		// Write-back failures are not fatal; we already have the card.
		_ = s.store.SaveCard(ctx, toStorageCard(outcome.Card))
	}
	return outcome, nil
}

// Offline answers a lookup from the cache alone, never contacting the
// backend. An exact name hit becomes an exact match; otherwise cached names
// containing the query become fuzzy candidates, ordered by name.
func (s *Service) Offline(ctx context.Context, name string) (resolver.SearchOutcome, error) {
	if s.store == nil {
		return resolver.SearchOutcome{}, ErrCacheDisabled
	}
	if strings.TrimSpace(name) == "" {
		return resolver.SearchOutcome{}, resolver.ErrInvalidQuery
	}

	cached, err := s.store.GetCard(ctx, name)
	if err == nil {
		return resolver.SearchOutcome{
			Kind: resolver.OutcomeExactMatch,
			Card: fromStorageCard(cached),
		}, nil
	}
	if !errors.Is(err, storage.ErrCardNotCached) {
		return resolver.SearchOutcome{}, fmt.Errorf("cardlookup: %w", err)
	}

	matches, err := s.store.SearchCards(ctx, name, 10)
	if err != nil {
		return resolver.SearchOutcome{}, fmt.Errorf("cardlookup: %w", err)
	}
	if len(matches) == 0 {
		return resolver.SearchOutcome{Kind: resolver.OutcomeNotFound}, nil
	}

	candidates := make([]manatomb.Card, len(matches))
	for i, match := range matches {
		candidates[i] = *fromStorageCard(match)
	}
	return resolver.SearchOutcome{
		Kind:       resolver.OutcomeFuzzyMatches,
		Candidates: candidates,
	}, nil
}

// PurgeStale deletes cache entries older than the staleness threshold.
// Reports the number of rows removed. A nil store purges nothing.
func (s *Service) PurgeStale(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.PurgeOlderThan(ctx, time.Now().Add(-s.staleThreshold))
}

// Random fetches a random card and caches it.
func (s *Service) Random(ctx context.Context) (*manatomb.Card, error) {
	card, err := s.source.ResolveRandom(ctx)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		_ = s.store.SaveCard(ctx, toStorageCard(card))
	}
	return card, nil
}

func toStorageCard(card *manatomb.Card) *storage.Card {
	imageURIs := map[string]string{}
	for key, uri := range map[string]string{
		"small":       card.ImageURIs.Small,
		"normal":      card.ImageURIs.Normal,
		"large":       card.ImageURIs.Large,
		"png":         card.ImageURIs.PNG,
		"art_crop":    card.ImageURIs.ArtCrop,
		"border_crop": card.ImageURIs.BorderCrop,
	} {
		if uri != "" {
			imageURIs[key] = uri
		}
	}

	return &storage.Card{
		Name:       card.Name,
		ManaCost:   card.ManaCost,
		TypeLine:   card.TypeLine,
		OracleText: card.OracleText,
		ImageURIs:  imageURIs,
		SetCode:    card.SetCode,
		SetName:    card.SetName,
		FetchedAt:  time.Now(),
	}
}

func fromStorageCard(card *storage.Card) *manatomb.Card {
	return &manatomb.Card{
		Name:       card.Name,
		ManaCost:   card.ManaCost,
		TypeLine:   card.TypeLine,
		OracleText: card.OracleText,
		ImageURIs: manatomb.ImageURIs{
			Small:      card.ImageURIs["small"],
			Normal:     card.ImageURIs["normal"],
			Large:      card.ImageURIs["large"],
			PNG:        card.ImageURIs["png"],
			ArtCrop:    card.ImageURIs["art_crop"],
			BorderCrop: card.ImageURIs["border_crop"],
		},
		SetCode: card.SetCode,
		SetName: card.SetName,
	}
}
