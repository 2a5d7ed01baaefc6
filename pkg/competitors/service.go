package competitors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// Service manages a user's private competitor list. These records have
// a separate lifecycle from AI search results: they carry a user_id,
// never a search_id, and live until the user deletes them.
type Service struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewService creates a new competitor CRUD service
func NewService(pool *pgxpool.Pool, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{pool: pool, logger: log}
}

// Create adds a competitor to the user's list
func (s *Service) Create(ctx context.Context, userID string, req models.CompetitorCreateRequest) (*models.Competitor, error) {
	rec := models.Competitor{
		ID:           uuid.NewString(),
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Logo:         req.Logo,
		RevenueRange: req.RevenueRange,
		TargetMarket: req.TargetMarket,
		Description:  req.Description,
		Website:      req.Website,
		WhatTheySell: req.WhatTheySell,
		Strengths:    req.Strengths,
		SocialMedia:  req.SocialMedia,
		UserID:       userID,
	}
	if rec.Logo == "" {
		rec.Logo = models.PlaceholderLogo
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed encoding competitor: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO competitors (id, name, user_id, doc) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Name, userID, doc)
	if err != nil {
		return nil, fmt.Errorf("failed creating competitor: %w", err)
	}

	return &rec, nil
}

// List returns all competitors owned by the user
func (s *Service) List(ctx context.Context, userID string) ([]models.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doc FROM competitors WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed listing competitors: %w", err)
	}
	defer rows.Close()

	competitors := []models.Competitor{}
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed scanning competitor row: %w", err)
		}

		var rec models.Competitor
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("failed decoding competitor document: %w", err)
		}
		rec.ID = id

		competitors = append(competitors, rec)
	}

	return competitors, rows.Err()
}

// Search matches stored competitors whose business type and location
// both contain the given terms, case-insensitively. The match runs over
// the whole table, user records and AI results alike.
func (s *Service) Search(ctx context.Context, businessType, location string) ([]models.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doc FROM competitors
		 WHERE doc->>'business_type' ILIKE '%' || $1 || '%'
		   AND doc->>'location' ILIKE '%' || $2 || '%'
		 ORDER BY created_at DESC`,
		businessType, location)
	if err != nil {
		return nil, fmt.Errorf("failed searching competitors: %w", err)
	}
	defer rows.Close()

	competitors := []models.Competitor{}
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed scanning competitor row: %w", err)
		}

		var rec models.Competitor
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("failed decoding competitor document: %w", err)
		}
		rec.ID = id

		competitors = append(competitors, rec)
	}

	return competitors, rows.Err()
}

// GetByID returns one competitor owned by the user
func (s *Service) GetByID(ctx context.Context, userID, competitorID string) (*models.Competitor, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM competitors WHERE id = $1 AND user_id = $2`,
		competitorID, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("competitor")
		}
		return nil, fmt.Errorf("failed reading competitor: %w", err)
	}

	var rec models.Competitor
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("failed decoding competitor document: %w", err)
	}
	rec.ID = competitorID

	return &rec, nil
}

// Update replaces the competitor's attributes
func (s *Service) Update(ctx context.Context, userID, competitorID string, req models.CompetitorCreateRequest) (*models.Competitor, error) {
	rec := models.Competitor{
		ID:           competitorID,
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Logo:         req.Logo,
		RevenueRange: req.RevenueRange,
		TargetMarket: req.TargetMarket,
		Description:  req.Description,
		Website:      req.Website,
		WhatTheySell: req.WhatTheySell,
		Strengths:    req.Strengths,
		SocialMedia:  req.SocialMedia,
		UserID:       userID,
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed encoding competitor: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE competitors SET name = $1, doc = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4`,
		rec.Name, doc, competitorID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed updating competitor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, domain.NewNotFoundError("competitor")
	}

	return &rec, nil
}

// Delete removes a competitor from the user's list
func (s *Service) Delete(ctx context.Context, userID, competitorID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM competitors WHERE id = $1 AND user_id = $2`,
		competitorID, userID)
	if err != nil {
		return fmt.Errorf("failed deleting competitor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("competitor")
	}

	return nil
}
