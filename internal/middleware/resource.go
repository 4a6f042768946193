package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// KnownResource rejects a :resource path parameter outside the six mirrored
// kinds with 400.  It runs ahead of LedgerAuth so a typo costs no budget.
func KnownResource(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := model.ParseKind(c.Param("resource")); !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource"})
		}
		return next(c)
	}
}
