package search

import (
	"context"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// Pagination bounds. No maximum limit is enforced here.
const (
	DefaultLimit = 6
	MinLimit     = 1
	MinOffset    = 0
)

// Service is the search orchestrator. For a request carrying a
// search_id it serves a page straight from the store; otherwise it
// dispatches a background job and hands back the task handle.
type Service struct {
	store      domain.SearchResultStore
	dispatcher domain.Dispatcher
	logger     logger.Logger
}

// NewService creates a new search orchestrator
func NewService(store domain.SearchResultStore, dispatcher domain.Dispatcher, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// NormalizePage clamps offset and limit to their allowed ranges and
// applies the default page size.
func NormalizePage(offset, limit int) (int, int) {
	if offset < MinOffset {
		offset = MinOffset
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	return offset, limit
}

// HandleSearch implements the submit-then-paginate contract. Exactly
// one of the two returns is non-nil on success: a page when search_id
// was supplied, a submission handle when a new job was dispatched.
func (s *Service) HandleSearch(ctx context.Context, taskType string, params map[string]string,
	searchID string, offset, limit int) (*models.CompetitorPage, *models.SubmittedResponse, error) {

	if searchID != "" {
		page, err := s.FetchPage(ctx, searchID, offset, limit)
		if err != nil {
			return nil, nil, err
		}
		return page, nil, nil
	}

	taskID, err := s.dispatcher.Submit(ctx, taskType, params)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("search job dispatched", "task_id", taskID, "type", taskType)

	return nil, &models.SubmittedResponse{
		TaskID: taskID,
		Status: "pending",
	}, nil
}

// FetchPage serves one page of an existing search. A search id whose
// backing job completed always resolves to at least one record, so an
// empty total is reported as not found rather than an empty success.
func (s *Service) FetchPage(ctx context.Context, searchID string, offset, limit int) (*models.CompetitorPage, error) {
	offset, limit = NormalizePage(offset, limit)

	competitors, total, err := s.store.FetchPage(ctx, searchID, offset, limit)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return nil, domain.NewNotFoundError("search")
	}

	return &models.CompetitorPage{
		Competitors: competitors,
		Total:       total,
		Offset:      offset,
		Limit:       limit,
		SearchID:    searchID,
	}, nil
}
