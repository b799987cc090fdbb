package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/handler"
)

// RegisterAuth mounts the authentication endpoints under /v1/auth.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
}
