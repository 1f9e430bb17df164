// Package router registers HTTP routes for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/healthsync/internal/handler"
)

// RegisterRoutes registers non-authenticated routes: the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers account creation and session endpoints.  None of
// them require an access token; logout reads one when present.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/users", a.Register)

	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
}
