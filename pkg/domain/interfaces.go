package domain

import (
	"context"
	"time"

	"github.com/fycapp/fyc-backend/pkg/models"
)

// CacheRepository defines caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// CompetitorFinder produces competitor records from the language model.
type CompetitorFinder interface {
	FindByDescription(ctx context.Context, description, location string) ([]models.Competitor, error)
	FindByNameOrURL(ctx context.Context, nameOrURL string) ([]models.Competitor, error)
}

// LogoResolver resolves a display logo URL for a domain. It never
// fails; unresolvable domains map to the placeholder sentinel.
type LogoResolver interface {
	Resolve(ctx context.Context, domain string) string
}

// SearchResultStore persists competitor records tagged by search id.
type SearchResultStore interface {
	UpsertBatch(ctx context.Context, records []models.Competitor, searchID string) (int, error)
	FetchBySearchID(ctx context.Context, searchID string) ([]models.Competitor, error)
	FetchPage(ctx context.Context, searchID string, offset, limit int) ([]models.Competitor, int, error)
}

// Dispatcher accepts background search jobs.
type Dispatcher interface {
	Submit(ctx context.Context, taskType string, params map[string]string) (string, error)
}
