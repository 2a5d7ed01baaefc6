package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// DomainError maps a domain error onto the matching HTTP response.
func DomainError(c echo.Context, err error) error {
	switch {
	case domain.IsNotFound(err):
		return NotFoundError(c, "")
	case domain.IsValidation(err):
		return ValidationError(c, err)
	case domain.IsAIUnavailable(err):
		log.Printf("[AI PROVIDER ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "ai_provider_unavailable",
			Message: "The AI provider is currently unavailable. Please try again later.",
		})
	case domain.IsAIResponse(err):
		log.Printf("[AI RESPONSE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "ai_response_invalid",
			Message: "The AI provider returned an unusable response. Please try again.",
		})
	default:
		return InternalError(c, err)
	}
}
