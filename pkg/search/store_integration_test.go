//go:build integration

package search

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fycapp/fyc-backend/pkg/database"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db.Pool, logger.Nop())
}

func cleanupSearch(t *testing.T, s *Store, searchID string) {
	t.Helper()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(),
			`DELETE FROM competitors WHERE search_id = $1`, searchID)
	})
}

func TestUpsertBatch_DeduplicatesByNameWithinSearch(t *testing.T) {
	store := setupStore(t)
	searchID := uuid.NewString()
	cleanupSearch(t, store, searchID)

	first := []models.Competitor{
		{Name: "Acme Coffee", BusinessType: "Coffee Shop", Location: "Seattle"},
		{Name: "Bean Barn", BusinessType: "Coffee Shop", Location: "Seattle"},
	}
	total, err := store.UpsertBatch(context.Background(), first, searchID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Same names again: the conflict target absorbs them, last write wins.
	second := []models.Competitor{
		{Name: "Acme Coffee", BusinessType: "Coffee Roastery", Location: "Seattle"},
		{Name: "Cup & Crumb", BusinessType: "Coffee Shop", Location: "Seattle"},
	}
	total, err = store.UpsertBatch(context.Background(), second, searchID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	records, err := store.FetchBySearchID(context.Background(), searchID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byName := map[string]models.Competitor{}
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	assert.Equal(t, "Coffee Roastery", byName["Acme Coffee"].BusinessType)
}

func TestUpsertBatch_SearchesDoNotCollide(t *testing.T) {
	store := setupStore(t)
	searchA := uuid.NewString()
	searchB := uuid.NewString()
	cleanupSearch(t, store, searchA)
	cleanupSearch(t, store, searchB)

	records := []models.Competitor{
		{Name: "Acme Coffee", BusinessType: "Coffee Shop", Location: "Seattle"},
	}

	totalA, err := store.UpsertBatch(context.Background(), records, searchA)
	require.NoError(t, err)
	totalB, err := store.UpsertBatch(context.Background(), records, searchB)
	require.NoError(t, err)

	assert.Equal(t, 1, totalA)
	assert.Equal(t, 1, totalB)
}

func TestFetchPage_WindowsOverStoredResults(t *testing.T) {
	store := setupStore(t)
	searchID := uuid.NewString()
	cleanupSearch(t, store, searchID)

	batch := make([]models.Competitor, 8)
	for i := range batch {
		batch[i] = models.Competitor{
			Name:         uuid.NewString(),
			BusinessType: "Bakery",
			Location:     "Portland",
		}
	}
	_, err := store.UpsertBatch(context.Background(), batch, searchID)
	require.NoError(t, err)

	page, total, err := store.FetchPage(context.Background(), searchID, 6, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Len(t, page, 2)

	page, total, err = store.FetchPage(context.Background(), searchID, 100, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Empty(t, page)
}
