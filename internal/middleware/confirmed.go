package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AccountSource reports whether an account has been confirmed.
// Satisfied by the user repository.
type AccountSource interface {
	IsConfirmed(ctx context.Context, userID uint64) (bool, error)
}

// RequireConfirmed returns a middleware that rejects requests from
// accounts that have not been confirmed yet.  It assumes JWTAuth has
// already stored the user id in the context.
func RequireConfirmed(accounts AccountSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := CurrentUserID(c)
			if userID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			ok, err := accounts.IsConfirmed(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account lookup failed"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account not confirmed"})
			}
			return next(c)
		}
	}
}
