package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/handler"
	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

// RegisterSocket registers the websocket endpoint.  Authentication
// happens in-band: the client sends a start frame carrying its token
// after the upgrade, so no JWT middleware runs here.
func RegisterSocket(e *echo.Echo, d *socket.Dispatcher) {
	e.GET("/ws", socket.Handler(d))
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems probe this endpoint to
	// verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Routes that do not require an existing session: register, login,
	// refresh, logout.  Each handler generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a fresh pair.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body with `refresh_token` and invalidates
	// it; no JWT is required so an expired session can still log out.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// Confirm completes registration for the authenticated account.
	auth.POST("/auth/confirm", a.Confirm)
	auth.DELETE("/auth/account", a.DeleteAccount)
}

// RegisterCollab registers the operation, permission, message and
// document endpoints.  All of them require a valid access token and a
// confirmed account; mutating calls also pass the rate limiter when
// one is configured.
func RegisterCollab(
	e *echo.Echo,
	jwtSecret string,
	accounts middleware.AccountSource,
	limiter echo.MiddlewareFunc,
	ops *handler.OperationHandler,
	perms *handler.PermissionHandler,
	msgs *handler.MessageHandler,
	docs *handler.DocumentHandler,
) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireConfirmed(accounts))
	if limiter != nil {
		g.Use(limiter)
	}

	// Operations
	g.POST("/operations", ops.Create)
	g.GET("/operations", ops.List)
	g.GET("/operations/lookup", ops.Lookup)
	g.GET("/operations/:id", ops.Get)
	g.PATCH("/operations/:id", ops.Update)
	g.PATCH("/operations/:id/active", ops.SetActive)
	g.DELETE("/operations/:id", ops.Delete)

	// Permissions on an operation
	g.GET("/operations/:id/permissions", perms.List)
	g.POST("/operations/:id/permissions", perms.Grant)
	g.DELETE("/operations/:id/permissions", perms.Revoke)
	g.POST("/operations/:id/permissions/bulk-delete", perms.BulkRevoke)

	// Chat history
	g.GET("/operations/:id/messages", msgs.List)

	// Document content and save history
	g.GET("/operations/:id/document", docs.Get)
	g.PUT("/operations/:id/document", docs.Save)
	g.GET("/operations/:id/changes", docs.History)
}
