package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

// maxContactBytes caps the contact payload.
const maxContactBytes = 64 << 10

// UserHandler serves the session-authenticated /user endpoints.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
}

func NewUserHandler(users UserStore, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		logger.Errorf("load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// UpdateContact replaces the caller's contact map with the request body,
// which must be a JSON object.
func (h *UserHandler) UpdateContact(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxContactBytes+1))
	if err != nil || len(body) > maxContactBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var contact map[string]any
	if err := json.Unmarshal(body, &contact); err != nil || contact == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact data must be a JSON object"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.UpdateContact(ctx, middleware.UserID(c), contact)
	if err != nil {
		logger.Warningf("update contact for %s: %v", middleware.UserID(c), err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not update contact"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// ChangePassword replaces the caller's password after checking the
// current one.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currentPassword and newPassword are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		logger.Errorf("load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		logger.Errorf("update password for %s: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
