package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/fycapp/fyc-backend/pkg/api/errors"
	"github.com/fycapp/fyc-backend/pkg/models"
	"github.com/fycapp/fyc-backend/pkg/search"
	"github.com/fycapp/fyc-backend/pkg/tasks"
)

// SearchHandler exposes the asynchronous competitor search pipeline:
// submit, poll, paginate.
type SearchHandler struct {
	service  *search.Service
	tracker  *tasks.Tracker
	validate *validator.Validate
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service *search.Service, tracker *tasks.Tracker) *SearchHandler {
	return &SearchHandler{
		service:  service,
		tracker:  tracker,
		validate: validator.New(),
	}
}

// FindCompetitors handles POST /competitors/find.
// Without a search_id query parameter it dispatches a background job
// and returns its task handle; with one it serves a result page.
func (h *SearchHandler) FindCompetitors(c echo.Context) error {
	searchID, offset, limit := pageParams(c)

	var params map[string]string
	if searchID == "" {
		var req models.FindRequest
		if err := c.Bind(&req); err != nil {
			return apierrors.ValidationError(c, err)
		}
		if err := h.validate.Struct(&req); err != nil {
			return apierrors.ValidationError(c, err)
		}
		params = map[string]string{
			"business_description": req.BusinessDescription,
			"location":             req.Location,
		}
	}

	return h.handle(c, tasks.TypeSearch, params, searchID, offset, limit)
}

// LookupCompetitor handles POST /competitors/lookup, the name/URL
// flavored search whose first result is the queried business itself.
func (h *SearchHandler) LookupCompetitor(c echo.Context) error {
	searchID, offset, limit := pageParams(c)

	var params map[string]string
	if searchID == "" {
		var req models.LookupRequest
		if err := c.Bind(&req); err != nil {
			return apierrors.ValidationError(c, err)
		}
		if err := h.validate.Struct(&req); err != nil {
			return apierrors.ValidationError(c, err)
		}
		params = map[string]string{
			"name_or_url": req.NameOrURL,
		}
	}

	return h.handle(c, tasks.TypeLookup, params, searchID, offset, limit)
}

func (h *SearchHandler) handle(c echo.Context, taskType string, params map[string]string,
	searchID string, offset, limit int) error {

	page, submitted, err := h.service.HandleSearch(c.Request().Context(), taskType, params, searchID, offset, limit)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	if submitted != nil {
		return c.JSON(http.StatusAccepted, submitted)
	}

	return c.JSON(http.StatusOK, page)
}

// GetSearchStatus handles GET /competitors/search/status/:task_id.
// Expired task records report 404, indistinguishable from ids that
// never existed.
func (h *SearchHandler) GetSearchStatus(c echo.Context) error {
	taskID := c.Param("task_id")
	if taskID == "" {
		return apierrors.ValidationError(c, echo.NewHTTPError(http.StatusBadRequest, "task_id is required"))
	}

	task, err := h.tracker.Get(c.Request().Context(), taskID)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	resp := models.TaskStatusResponse{
		ID:        task.ID,
		Type:      task.Type,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
		Error:     task.Error,
	}
	if task.Result != nil {
		resp.Result = task.Result
	}

	return c.JSON(http.StatusOK, resp)
}

// pageParams reads the pagination query parameters. Unparsable values
// fall back to their zero defaults and get clamped downstream.
func pageParams(c echo.Context) (searchID string, offset, limit int) {
	searchID = c.QueryParam("search_id")
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return searchID, offset, limit
}
