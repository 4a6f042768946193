package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// bearerToken returns the credential of an "Authorization: Bearer" header.
func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(auth[7:])
	return raw, raw != ""
}

// UserID returns the authenticated user id stored by SessionAuth or
// LedgerAuth, or "" when the request is anonymous.
func UserID(c echo.Context) string {
	s, _ := c.Get(CtxUserID).(string)
	return s
}

// Role returns the role stored by SessionAuth.
func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// currentUserID is UserID with a placeholder for anonymous callers, for
// use in keys.
func currentUserID(c echo.Context) string {
	if s := UserID(c); s != "" {
		return s
	}
	return "anon"
}
