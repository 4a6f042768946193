package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/service"
	"github.com/iliyamo/swapi-mirror/internal/swapi"
)

// AdminHandler serves the admin-only maintenance endpoints.
type AdminHandler struct {
	Syncer Syncer
	Store  ResourcePurger
}

func NewAdminHandler(s Syncer, store ResourcePurger) *AdminHandler {
	return &AdminHandler{Syncer: s, Store: store}
}

type syncReq struct {
	Resource string `json:"resource"`
}

// Sync mirrors one resource from upstream.
func (h *AdminHandler) Sync(c echo.Context) error {
	var req syncReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Resource == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resource is required"})
	}

	res, err := h.Syncer.Sync(c.Request().Context(), req.Resource)
	switch {
	case errors.Is(err, service.ErrInvalidResource):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource"})
	case errors.Is(err, swapi.ErrUpstream):
		logger.Errorf("admin sync %s by %s: %v", req.Resource, middleware.UserID(c), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upstream retrieval failed"})
	case err != nil:
		logger.Errorf("admin sync %s by %s: %v", req.Resource, middleware.UserID(c), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":        fmt.Sprintf("%s synchronized", res.Resource),
		"total_upstream": res.TotalUpstream,
		"total_upserted": res.TotalUpserted,
	})
}

// Purge deletes every row of a resource table.  The caller must repeat
// the resource name in ?confirm= for the request to go through.
func (h *AdminHandler) Purge(c echo.Context) error {
	kind, ok := model.ParseKind(c.Param("resource"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource"})
	}
	if c.QueryParam("confirm") != string(kind) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("confirm=%s is required", kind)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	n, err := h.Store.DeleteAll(ctx, kind)
	if err != nil {
		logger.Errorf("purge %s: %v", kind, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	logger.Warningf("purge %s by %s: %d rows deleted", kind, middleware.UserID(c), n)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("all %s deleted", kind),
		"deleted": n,
	})
}
