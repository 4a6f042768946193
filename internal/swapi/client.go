// Package swapi drains cursor-paginated collections from the public Star
// Wars API (or any server speaking the same page format).
package swapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// ErrUpstream marks a failed page retrieval.  Drain wraps it with the
// resource, the page URL and the cause.
var ErrUpstream = errors.New("upstream retrieval failed")

// Page is one page of an upstream collection.
type Page struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// Client fetches pages over HTTP.  It is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client rooted at baseURL.  The timeout applies to
// each page request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FirstPageURL is where draining kind starts.
func (c *Client) FirstPageURL(kind model.Kind) string {
	return c.BaseURL + "/" + string(kind) + "/"
}

// Drain follows the next cursor from the first page of kind until it is
// null and returns every item in upstream order.  Any failed page aborts
// the drain and nothing is returned.
func (c *Client) Drain(ctx context.Context, kind model.Kind) ([]json.RawMessage, error) {
	var all []json.RawMessage
	next := c.FirstPageURL(kind)
	for next != "" {
		page, err := c.fetch(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): %v", ErrUpstream, kind, err)
		}
		all = append(all, page.Results...)

		if page.Next == nil || *page.Next == "" {
			break
		}
		next, err = resolve(next, *page.Next)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): bad next cursor %q: %v", ErrUpstream, kind, *page.Next, err)
		}
	}
	if all == nil {
		all = []json.RawMessage{}
	}
	return all, nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode)
	}
	var p Page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("GET %s: decode: %w", pageURL, err)
	}
	return &p, nil
}

// resolve makes a possibly relative cursor absolute against the page it
// came from.
func resolve(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
