// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/handler"
)

// RegisterRoutes registers the unauthenticated liveness probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers register and login under /auth.  rateLimit guards
// both; pass a no-op middleware to disable limiting.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/auth", rateLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}
