package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCardNotCached is returned when the cache has no entry for a name.
var ErrCardNotCached = errors.New("storage: card not cached")

// Card is a cached oracle card row.
type Card struct {
	Name       string
	ManaCost   string
	TypeLine   string
	OracleText string
	ImageURIs  map[string]string
	SetCode    string
	SetName    string
	FetchedAt  time.Time
}

// SaveCard inserts or replaces a cached card, stamping the fetch time.
func (db *DB) SaveCard(ctx context.Context, card *Card) error {
	imageURIs, err := json.Marshal(card.ImageURIs)
	if err != nil {
		return fmt.Errorf("encode image URIs: %w", err)
	}

	fetchedAt := card.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO cards (name, mana_cost, type_line, oracle_text, image_uris, set_code, set_name, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			mana_cost = excluded.mana_cost,
			type_line = excluded.type_line,
			oracle_text = excluded.oracle_text,
			image_uris = excluded.image_uris,
			set_code = excluded.set_code,
			set_name = excluded.set_name,
			fetched_at = excluded.fetched_at
	`, card.Name, card.ManaCost, card.TypeLine, card.OracleText, string(imageURIs), card.SetCode, card.SetName, fetchedAt)
	if err != nil {
		return fmt.Errorf("save card %q: %w", card.Name, err)
	}
	return nil
}

// GetCard retrieves a cached card by exact name.
func (db *DB) GetCard(ctx context.Context, name string) (*Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT name, mana_cost, type_line, oracle_text, image_uris, set_code, set_name, fetched_at
		FROM cards WHERE name = ?
	`, name)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("get card %q: %w", name, err)
	}
	return card, nil
}

// SearchCards returns cached cards whose names contain the fragment,
// case-insensitively, ordered by name.
func (db *DB) SearchCards(ctx context.Context, fragment string, limit int) ([]*Card, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, mana_cost, type_line, oracle_text, image_uris, set_code, set_name, fetched_at
		FROM cards WHERE name LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY name LIMIT ?
	`, fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("search cards %q: %w", fragment, err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// PurgeOlderThan deletes cache entries fetched before the cutoff. Returns
// the number of rows removed.
func (db *DB) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cards: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*Card, error) {
	var card Card
	var imageURIs string
	err := row.Scan(&card.Name, &card.ManaCost, &card.TypeLine, &card.OracleText,
		&imageURIs, &card.SetCode, &card.SetName, &card.FetchedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(imageURIs), &card.ImageURIs); err != nil {
		return nil, fmt.Errorf("decode image URIs: %w", err)
	}
	return &card, nil
}
