package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/fycapp/fyc-backend/pkg/api/errors"
	"github.com/fycapp/fyc-backend/pkg/auth"
	"github.com/fycapp/fyc-backend/pkg/competitors"
	"github.com/fycapp/fyc-backend/pkg/insights"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// CompetitorHandler handles the user-owned competitor list and its
// insights endpoint.
type CompetitorHandler struct {
	service  *competitors.Service
	insights *insights.Service
	validate *validator.Validate
}

// NewCompetitorHandler creates a new competitor CRUD handler
func NewCompetitorHandler(service *competitors.Service, insightsService *insights.Service) *CompetitorHandler {
	return &CompetitorHandler{
		service:  service,
		insights: insightsService,
		validate: validator.New(),
	}
}

// Create handles POST /competitors
func (h *CompetitorHandler) Create(c echo.Context) error {
	var req models.CompetitorCreateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	created, err := h.service.Create(c.Request().Context(), auth.UserID(c), req)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// List handles GET /competitors
func (h *CompetitorHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// Search handles POST /competitors/search: a direct match over stored
// competitor records, no AI involved.
func (h *CompetitorHandler) Search(c echo.Context) error {
	var req models.CompetitorSearchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	matches, err := h.service.Search(c.Request().Context(), req.BusinessType, req.Location)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, matches)
}

// Update handles PUT /competitors/:id
func (h *CompetitorHandler) Update(c echo.Context) error {
	var req models.CompetitorCreateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	updated, err := h.service.Update(c.Request().Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /competitors/:id
func (h *CompetitorHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.UserID(c), c.Param("id")); err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetInsights handles GET /competitors/:id/insights. Scraping plus the
// model call can be slow, so the request runs under its own timeout.
func (h *CompetitorHandler) GetInsights(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	competitorID := c.Param("id")

	competitor, err := h.service.GetByID(ctx, auth.UserID(c), competitorID)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	lines, err := h.insights.Generate(ctx, *competitor)
	if err != nil {
		return apierrors.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, models.CompetitorInsights{
		CompetitorID: competitorID,
		Insights:     lines,
	})
}
