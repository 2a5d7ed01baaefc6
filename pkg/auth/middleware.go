package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fycapp/fyc-backend/pkg/models"
)

const userIDContextKey = "user_id"

// Middleware validates the Bearer token and stores the user id on the
// request context.
func Middleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing or malformed authorization header.",
				})
			}

			claims, err := ValidateJWT(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid or expired token.",
				})
			}

			c.Set(userIDContextKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(c echo.Context) string {
	if id, ok := c.Get(userIDContextKey).(string); ok {
		return id
	}
	return ""
}
