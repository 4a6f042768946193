package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/handler"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
)

// RegisterUser registers the /user endpoints.  They verify the session
// token directly and never touch the API token ledger.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, codec middleware.TokenVerifier) {
	g := e.Group("/user", middleware.SessionAuth(codec))
	g.GET("/me", u.Me)
	g.PUT("/contact", u.UpdateContact)
	g.PUT("/change-password", u.ChangePassword)
}
