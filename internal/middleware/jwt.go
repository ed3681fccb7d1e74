package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the authenticated user id into the request
// context under "user_id".  The provided secret must match the one
// used when issuing tokens.  Handlers behind it read the id with
// CurrentUserID.
//
// Tokens may alternatively be sent as a "token" query or form value;
// desktop clients attach the token that way on every request, as the
// socket protocol does.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			userID, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				// Clients treat 401 as a forced logout signal.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", userID)
			c.Set("token", raw)
			return next(c)
		}
	}
}

// bearerToken extracts the access token from the Authorization
// header, falling back to the token query/form value.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if v := c.QueryParam("token"); v != "" {
		return v
	}
	return c.FormValue("token")
}

// CurrentUserID returns the authenticated user id stored by JWTAuth,
// or 0 when the request is unauthenticated.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}
