package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// Store persists AI search results in Postgres. Records are stored
// document-style, one JSONB blob per competitor, keyed by the
// (name, search_id) unique constraint that implements upsert-by-name.
type Store struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewStore creates a new search result store
func NewStore(pool *pgxpool.Pool, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{pool: pool, logger: log}
}

const upsertSQL = `
INSERT INTO competitors (id, name, search_id, doc)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name, search_id)
DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`

// UpsertBatch writes records under the given search id and returns the
// total row count for that search afterwards. Each upsert is handled
// independently: one failing record is logged and skipped, the rest of
// the batch still lands. The write only errors as a whole when every
// record failed.
func (s *Store) UpsertBatch(ctx context.Context, records []models.Competitor, searchID string) (int, error) {
	var lastErr error
	failed := 0

	for i := range records {
		rec := records[i]
		rec.ID = uuid.NewString()
		rec.SearchID = searchID
		rec.UserID = ""

		doc, err := json.Marshal(rec)
		if err != nil {
			s.logger.Error("failed encoding competitor record", "name", rec.Name, "error", err)
			lastErr = err
			failed++
			continue
		}

		if _, err := s.pool.Exec(ctx, upsertSQL, rec.ID, rec.Name, searchID, doc); err != nil {
			s.logger.Error("failed upserting competitor record",
				"name", rec.Name, "search_id", searchID, "error", err)
			lastErr = err
			failed++
		}
	}

	if len(records) > 0 && failed == len(records) {
		return 0, domain.NewStoreWriteError(lastErr)
	}

	total, err := s.countBySearchID(ctx, searchID)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// FetchBySearchID returns all records tagged with the search id. The
// order is not guaranteed; callers needing a stable order sort
// themselves.
func (s *Store) FetchBySearchID(ctx context.Context, searchID string) ([]models.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, doc FROM competitors WHERE search_id = $1`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed querying search results: %w", err)
	}
	defer rows.Close()

	return scanCompetitors(rows)
}

// FetchPage returns one page of a search result set plus the full
// matching count. An offset beyond the total yields an empty page.
func (s *Store) FetchPage(ctx context.Context, searchID string, offset, limit int) ([]models.Competitor, int, error) {
	total, err := s.countBySearchID(ctx, searchID)
	if err != nil {
		return nil, 0, err
	}

	if total == 0 || offset >= total {
		return []models.Competitor{}, total, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, doc FROM competitors
		 WHERE search_id = $1
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3`,
		searchID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed querying search result page: %w", err)
	}
	defer rows.Close()

	page, err := scanCompetitors(rows)
	if err != nil {
		return nil, 0, err
	}

	return page, total, nil
}

// DeleteOlderThan removes AI search rows past the retention window and
// returns how many were dropped. User-owned records are untouched.
func (s *Store) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM competitors
		 WHERE search_id IS NOT NULL
		   AND created_at < now() - make_interval(days => $1)`,
		retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed purging stale search results: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) countBySearchID(ctx context.Context, searchID string) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competitors WHERE search_id = $1`, searchID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed counting search results: %w", err)
	}
	return total, nil
}

// rowScanner is the slice of pgx.Rows the scanner needs.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCompetitors(rows rowScanner) ([]models.Competitor, error) {
	competitors := []models.Competitor{}
	for rows.Next() {
		var (
			id, name string
			doc      []byte
		)
		if err := rows.Scan(&id, &name, &doc); err != nil {
			return nil, fmt.Errorf("failed scanning competitor row: %w", err)
		}

		var rec models.Competitor
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("failed decoding competitor document: %w", err)
		}

		// Columns are authoritative over the document copy.
		rec.ID = id
		rec.Name = name

		competitors = append(competitors, rec)
	}

	return competitors, rows.Err()
}
