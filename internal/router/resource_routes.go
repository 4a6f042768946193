package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/handler"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
)

// RegisterResources registers the public read surface.  Listings are
// gated by the API token ledger; the cache sits behind it so a cached
// answer still costs one request.
func RegisterResources(e *echo.Echo, r *handler.ResourceHandler, ledger middleware.TokenConsumer, cache echo.MiddlewareFunc) {
	e.GET("/v1", r.Index)
	e.GET("/v1/:resource", r.List,
		middleware.KnownResource,
		middleware.LedgerAuth(ledger),
		cache,
	)
}
