package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

// AuthHandler bundles dependencies for the register and login endpoints.
type AuthHandler struct {
	Users      UserStore
	Sessions   SessionMinter
	Ledger     LedgerIssuer
	BcryptCost int

	decoyOnce sync.Once
	decoy     string
}

// checkPassword is swapped in tests to observe bcrypt comparisons.
var checkPassword = utils.VerifyPassword

// decoyHash is compared against when the email is unknown, so a miss costs
// the same bcrypt work as a wrong password.
func (h *AuthHandler) decoyHash() string {
	h.decoyOnce.Do(func() {
		h.decoy, _ = utils.HashPassword("no-such-user", h.BcryptCost)
	})
	return h.decoy
}

func NewAuthHandler(users UserStore, sessions SessionMinter, ledger LedgerIssuer, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Ledger: ledger, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // admin | user, defaults to user
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Register creates a user.  The password hash never leaves the server.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or user"})
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u := model.User{Email: req.Email, PasswordHash: hash, Role: role, ContactData: map[string]any{}}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
		}
		logger.Errorf("register %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// Login checks credentials, mints a session token and records its API
// token ledger row.  Unknown email and wrong password get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			checkPassword(h.decoyHash(), req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		logger.Errorf("login lookup %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !checkPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	session, err := h.Sessions.Mint(u.ID, u.Email, u.Role)
	if err != nil {
		logger.Errorf("mint session for %s: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	if err := h.Ledger.Issue(ctx, u.ID, session.Token); err != nil {
		logger.Errorf("issue api token for %s: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue api token failed"})
	}

	now := time.Now().UTC()
	if err := h.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
		logger.Warningf("touch last_login for %s: %v", u.ID, err)
	} else {
		u.LastLogin = &now
	}

	return c.JSON(http.StatusOK, loginResp{Token: session.Token, ExpiresAt: session.Exp, User: u})
}
