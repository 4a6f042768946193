package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/handler"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
	"github.com/iliyamo/swapi-mirror/internal/model"
)

// RegisterAdmin registers the admin-only maintenance endpoints.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, codec middleware.TokenVerifier) {
	g := e.Group(
		"/admin",
		middleware.SessionAuth(codec),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/sync", a.Sync)
	g.DELETE("/resources/:resource", a.Purge)
}
