package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/service"
)

// HeaderAPIRemaining reports the budget left on the consumed ledger row.
const HeaderAPIRemaining = "X-Api-Remaining"

// TokenConsumer spends API token budget.  *service.Ledger satisfies it.
type TokenConsumer interface {
	CheckAndConsume(ctx context.Context, token string) (service.Grant, error)
}

// LedgerAuth admits a request only if its bearer token has a live ledger
// row, spending one unit of that row's budget.  The rejection reason is
// returned to the caller verbatim.
func LedgerAuth(ledger TokenConsumer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			grant, err := ledger.CheckAndConsume(c.Request().Context(), raw)
			switch {
			case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExhausted):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			case err != nil:
				logger.Errorf("ledger check failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(CtxUserID, grant.UserID)
			c.Response().Header().Set(HeaderAPIRemaining, strconv.Itoa(grant.Remaining))
			return next(c)
		}
	}
}
