package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rozgar/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	return db
}

func TestConversationAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(testDB(t))

	texts := []string{"first", "second", "third", "fourth"}
	for i, txt := range texts {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, store.Append(ctx, domain.Turn{
			SessionID: "s1", Role: role, Text: txt, Language: "en", CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, store.Append(ctx, domain.Turn{
		SessionID: "other", Role: domain.RoleUser, Text: "noise", CreatedAt: time.Now(),
	}))

	turns, err := store.Recent(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	// Most recent three, in chronological order.
	assert.Equal(t, "second", turns[0].Text)
	assert.Equal(t, "third", turns[1].Text)
	assert.Equal(t, "fourth", turns[2].Text)
	assert.Equal(t, domain.RoleAssistant, turns[0].Role)

	turns, err = store.Recent(ctx, "unknown", 5)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestPreferencesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(testDB(t))

	first := domain.Preferences{
		SessionID:  "s1",
		Categories: []string{"Technology"},
		Keywords:   []string{"python"},
		Location:   "Chandigarh",
	}
	require.NoError(t, store.Put(ctx, first))

	w := 0.5
	second := domain.Preferences{
		SessionID:  "s1",
		Categories: []string{"Government Jobs"},
		Keywords:   []string{"clerk", "typing"},
		Weight:     &w,
	}
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Government Jobs"}, got.Categories)
	assert.Equal(t, []string{"clerk", "typing"}, got.Keywords)
	assert.Empty(t, got.Location, "the whole record is replaced, not merged")
	require.NotNil(t, got.Weight)
	assert.InDelta(t, 0.5, *got.Weight, 1e-9)
}

func TestPreferencesGetMissing(t *testing.T) {
	store := NewPreferenceStore(testDB(t))
	got, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", got.SessionID)
	assert.True(t, got.Empty())
}

func TestReplaceDocumentSwapsChunks(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(testDB(t))
	doc := domain.Document{ID: "doc-1", Text: "v1 text", Language: "en", IngestedAt: time.Now()}

	removed, err := store.ReplaceDocument(ctx, doc, []domain.Chunk{
		{ID: "doc-1@aaaa:0", DocumentID: "doc-1", Index: 0, Text: "v1 chunk", Length: 8},
	})
	require.NoError(t, err)
	assert.Empty(t, removed)

	doc.Text = "v2 text, longer than before"
	removed, err = store.ReplaceDocument(ctx, doc, []domain.Chunk{
		{ID: "doc-1@bbbb:0", DocumentID: "doc-1", Index: 0, Text: "v2 first", Length: 8},
		{ID: "doc-1@bbbb:1", DocumentID: "doc-1", Index: 1, Text: "v2 second", Length: 9, Overlap: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1@aaaa:0"}, removed)

	chunks, err := store.Chunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-1@bbbb:0", chunks[0].ID)
	assert.Equal(t, "doc-1@bbbb:1", chunks[1].ID)
	assert.Equal(t, 2, chunks[1].Overlap)
}

func TestJobCatalogSeedBuiltin(t *testing.T) {
	ctx := context.Background()
	catalog := NewJobCatalog(testDB(t))
	require.NoError(t, catalog.Seed(ctx, ""))

	listings, err := catalog.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 3)
	// Ordered by posting date, newest first.
	for i := 1; i < len(listings); i++ {
		assert.False(t, listings[i].PostedAt.After(listings[i-1].PostedAt))
	}

	// Seeding again upserts instead of duplicating.
	require.NoError(t, catalog.Seed(ctx, ""))
	listings, err = catalog.Listings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestJobCatalogSeedFromFile(t *testing.T) {
	ctx := context.Background()
	catalog := NewJobCatalog(testDB(t))

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	data := `listings:
  - id: y-001
    title: Warehouse Supervisor
    company: Logistics Ltd
    category: Logistics
    description: Supervise inbound and outbound shipments.
    location: Amritsar
    posted_at: 2026-08-20T00:00:00Z
  - id: y-002
    title: Nurse
    company: Civil Hospital
    category: Healthcare
    description: Staff nurse position, night shifts.
    location: Patiala
    posted_at: 2026-08-25T00:00:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	require.NoError(t, catalog.Seed(ctx, path))

	listings, err := catalog.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "y-002", listings[0].ID)
	assert.Equal(t, "Nurse", listings[0].Title)
	assert.Equal(t, "y-001", listings[1].ID)
}

func TestJobCatalogSeedMissingFile(t *testing.T) {
	catalog := NewJobCatalog(testDB(t))
	err := catalog.Seed(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
