package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/utils"
)

// TokenVerifier checks session tokens.  *utils.SessionCodec satisfies it.
type TokenVerifier interface {
	Verify(raw string) (*utils.SessionClaims, error)
}

// SessionAuth validates a bearer session token and stores its subject,
// email and role in the context under CtxUserID, CtxEmail and CtxRole.
// It never touches the API token ledger.
func SessionAuth(codec TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := codec.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, claims.UserID())
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
