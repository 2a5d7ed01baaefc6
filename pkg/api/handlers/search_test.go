package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fycapp/fyc-backend/pkg/cache"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
	"github.com/fycapp/fyc-backend/pkg/search"
	"github.com/fycapp/fyc-backend/pkg/tasks"
)

// stubStore serves canned result sets per search id.
type stubStore struct {
	sets map[string][]models.Competitor
}

func (s *stubStore) UpsertBatch(ctx context.Context, records []models.Competitor, searchID string) (int, error) {
	s.sets[searchID] = append(s.sets[searchID], records...)
	return len(s.sets[searchID]), nil
}

func (s *stubStore) FetchBySearchID(ctx context.Context, searchID string) ([]models.Competitor, error) {
	return s.sets[searchID], nil
}

func (s *stubStore) FetchPage(ctx context.Context, searchID string, offset, limit int) ([]models.Competitor, int, error) {
	records := s.sets[searchID]
	total := len(records)
	if offset >= total {
		return []models.Competitor{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return records[offset:end], total, nil
}

// stubDispatcher hands out a fixed task id.
type stubDispatcher struct {
	taskID     string
	lastType   string
	lastParams map[string]string
}

func (s *stubDispatcher) Submit(ctx context.Context, taskType string, params map[string]string) (string, error) {
	s.lastType = taskType
	s.lastParams = params
	return s.taskID, nil
}

func setupSearchHandler(t *testing.T) (*SearchHandler, *stubStore, *stubDispatcher, *tasks.Tracker) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = cacheClient.Close() })

	tracker := tasks.NewTracker(cacheClient, time.Hour, logger.Nop())
	store := &stubStore{sets: map[string][]models.Competitor{}}
	dispatcher := &stubDispatcher{taskID: "task-42"}
	service := search.NewService(store, dispatcher, logger.Nop())

	return NewSearchHandler(service, tracker), store, dispatcher, tracker
}

func doRequest(h echo.HandlerFunc, method, target, body string, pathParams map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	_ = h(c)
	return rec
}

func TestFindCompetitors_DispatchesJob(t *testing.T) {
	h, _, dispatcher, _ := setupSearchHandler(t)

	rec := doRequest(h.FindCompetitors, http.MethodPost, "/api/v1/competitors/find",
		`{"business_description": "organic coffee roaster", "location": "Seattle"}`, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp models.SubmittedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-42", resp.TaskID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, tasks.TypeSearch, dispatcher.lastType)
	assert.Equal(t, "Seattle", dispatcher.lastParams["location"])
}

func TestFindCompetitors_ValidationError(t *testing.T) {
	h, _, _, _ := setupSearchHandler(t)

	rec := doRequest(h.FindCompetitors, http.MethodPost, "/api/v1/competitors/find",
		`{"business_description": ""}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindCompetitors_PaginatesExistingSearch(t *testing.T) {
	h, store, _, _ := setupSearchHandler(t)
	for i := 0; i < 8; i++ {
		store.sets["s-1"] = append(store.sets["s-1"], models.Competitor{
			ID:   fmt.Sprintf("c-%d", i),
			Name: fmt.Sprintf("Competitor %d", i),
		})
	}

	rec := doRequest(h.FindCompetitors, http.MethodPost,
		"/api/v1/competitors/find?search_id=s-1&offset=0&limit=6", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var page models.CompetitorPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Competitors, 6)
	assert.Equal(t, 8, page.Total)
	assert.Equal(t, "s-1", page.SearchID)
	assert.Equal(t, 6, page.Limit)
}

func TestFindCompetitors_UnknownSearchID(t *testing.T) {
	h, _, _, _ := setupSearchHandler(t)

	rec := doRequest(h.FindCompetitors, http.MethodPost,
		"/api/v1/competitors/find?search_id=not-a-real-id&offset=0&limit=6", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupCompetitor_DispatchesJob(t *testing.T) {
	h, _, dispatcher, _ := setupSearchHandler(t)

	rec := doRequest(h.LookupCompetitor, http.MethodPost, "/api/v1/competitors/lookup",
		`{"name_or_url": "acme.example"}`, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, tasks.TypeLookup, dispatcher.lastType)
	assert.Equal(t, "acme.example", dispatcher.lastParams["name_or_url"])
}

func TestGetSearchStatus(t *testing.T) {
	h, _, _, tracker := setupSearchHandler(t)

	task, err := tracker.Create(context.Background(), tasks.TypeSearch, map[string]string{"location": "Seattle"})
	require.NoError(t, err)
	require.NoError(t, tracker.SetStatus(context.Background(), task.ID, tasks.StatusCompleted,
		&tasks.TaskResult{SearchID: "s-9", Total: 7}, ""))

	rec := doRequest(h.GetSearchStatus, http.MethodGet, "/api/v1/competitors/search/status/"+task.ID,
		"", map[string]string{"task_id": task.ID})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TaskStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s-9", result["search_id"])
	assert.Equal(t, float64(7), result["total"])
}

func TestGetSearchStatus_Unknown(t *testing.T) {
	h, _, _, _ := setupSearchHandler(t)

	rec := doRequest(h.GetSearchStatus, http.MethodGet, "/api/v1/competitors/search/status/nope",
		"", map[string]string{"task_id": "nope"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
