package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// ResourceLister reads a window of a resource table.
type ResourceLister interface {
	Count(ctx context.Context, kind model.Kind) (int, error)
	List(ctx context.Context, kind model.Kind, limit, offset int) ([]model.Row, error)
}

// Page mirrors the upstream list envelope.
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []model.Row `json:"results"`
}

// Reader serves paginated reads of the local mirror.
type Reader struct {
	store ResourceLister
}

func NewReader(store ResourceLister) *Reader { return &Reader{store: store} }

// ClampWindow applies the read window rules: limit in (0, MaxLimit]
// defaulting to DefaultLimit, offset never negative.
func ClampWindow(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns one window of resource ordered by local id together with
// the exact row count.  next and previous are full request urls under
// baseURL (scheme://host), or nil at the edges.
func (r *Reader) List(ctx context.Context, resource string, limit, offset int, baseURL string) (Page, error) {
	kind, ok := model.ParseKind(resource)
	if !ok {
		return Page{}, ErrInvalidResource
	}
	limit, offset = ClampWindow(limit, offset)

	count, err := r.store.Count(ctx, kind)
	if err != nil {
		return Page{}, fmt.Errorf("count %s: %w", kind, err)
	}
	rows, err := r.store.List(ctx, kind, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list %s: %w", kind, err)
	}
	if rows == nil {
		rows = []model.Row{}
	}

	p := Page{Count: count, Results: rows}
	if offset < count && limit < count-offset {
		p.Next = pageURL(baseURL, kind, limit, offset+limit)
	}
	if offset > 0 {
		p.Previous = pageURL(baseURL, kind, limit, max(offset-limit, 0))
	}
	return p, nil
}

func pageURL(baseURL string, kind model.Kind, limit, offset int) *string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	s := strings.TrimRight(baseURL, "/") + "/v1/" + string(kind) + "?" + q.Encode()
	return &s
}
