package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/service"
)

// ResourceHandler serves the mirrored collections under /v1.
type ResourceHandler struct {
	Reader ResourceReader
	// BaseURL is scheme://host for pagination links.  Empty derives it
	// from the request.
	BaseURL string
}

func NewResourceHandler(r ResourceReader, baseURL string) *ResourceHandler {
	return &ResourceHandler{Reader: r, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (h *ResourceHandler) baseURL(c echo.Context) string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

// Index maps every resource name to its listing url.
func (h *ResourceHandler) Index(c echo.Context) error {
	base := h.baseURL(c)
	out := make(map[string]string, len(model.Kinds))
	for _, k := range model.Kinds {
		out[string(k)] = base + "/v1/" + string(k)
	}
	return c.JSON(http.StatusOK, out)
}

// List returns one page of a resource.  Unparseable limit or offset values
// fall back to the defaults.
func (h *ResourceHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	page, err := h.Reader.List(ctx, c.Param("resource"), limit, offset, h.baseURL(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidResource) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource"})
		}
		logger.Errorf("list %s: %v", c.Param("resource"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, page)
}
