package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.db")
	db, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndGetCard(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	card := &Card{
		Name:       "Lightning Bolt",
		ManaCost:   "{R}",
		TypeLine:   "Instant",
		OracleText: "Lightning Bolt deals 3 damage to any target.",
		ImageURIs:  map[string]string{"normal": "https://example.com/bolt.jpg"},
		SetCode:    "lea",
		SetName:    "Limited Edition Alpha",
	}
	require.NoError(t, db.SaveCard(ctx, card))

	got, err := db.GetCard(ctx, "Lightning Bolt")
	require.NoError(t, err)
	assert.Equal(t, "{R}", got.ManaCost)
	assert.Equal(t, "Instant", got.TypeLine)
	assert.Equal(t, "https://example.com/bolt.jpg", got.ImageURIs["normal"])
	assert.False(t, got.FetchedAt.IsZero(), "fetch time should be stamped on save")
}

func TestGetCard_NotCached(t *testing.T) {
	db := testDB(t)

	_, err := db.GetCard(context.Background(), "Zzyzx")
	assert.ErrorIs(t, err, ErrCardNotCached)
}

func TestSaveCard_UpsertsByName(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveCard(ctx, &Card{Name: "Lightning Bolt", SetCode: "lea"}))
	require.NoError(t, db.SaveCard(ctx, &Card{Name: "Lightning Bolt", SetCode: "m11"}))

	got, err := db.GetCard(ctx, "Lightning Bolt")
	require.NoError(t, err)
	assert.Equal(t, "m11", got.SetCode, "newer printing should replace the row")

	cards, err := db.SearchCards(ctx, "Lightning", 0)
	require.NoError(t, err)
	assert.Len(t, cards, 1, "upsert must not create a second row")
}

func TestSearchCards(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, name := range []string{"Lightning Bolt", "Chain Lightning", "Counterspell"} {
		require.NoError(t, db.SaveCard(ctx, &Card{Name: name}))
	}

	cards, err := db.SearchCards(ctx, "lightning", 10)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	// Ordered by name.
	assert.Equal(t, "Chain Lightning", cards[0].Name)
	assert.Equal(t, "Lightning Bolt", cards[1].Name)

	cards, err = db.SearchCards(ctx, "lightning", 1)
	require.NoError(t, err)
	assert.Len(t, cards, 1, "limit should be respected")
}

func TestPurgeOlderThan(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.SaveCard(ctx, &Card{Name: "Stale", FetchedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, db.SaveCard(ctx, &Card{Name: "Fresh", FetchedAt: now}))

	removed, err := db.PurgeOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = db.GetCard(ctx, "Stale")
	assert.ErrorIs(t, err, ErrCardNotCached)
	_, err = db.GetCard(ctx, "Fresh")
	assert.NoError(t, err)
}
