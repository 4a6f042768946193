// Package service holds the application's core operations: the API token
// ledger, the resource synchronizer and the paginated resource reader.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

var (
	// ErrInvalidToken is the ledger's answer to a token whose signature,
	// expiry or subject does not check out.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExhausted means no live ledger row matched the token.
	ErrTokenExhausted = errors.New("expired or exhausted")
)

// TokenVerifier checks a session token.  *utils.SessionCodec satisfies it.
type TokenVerifier interface {
	Verify(raw string) (*utils.SessionClaims, error)
}

// LedgerStore persists api_tokens rows.  ConsumeLatest must decrement
// atomically and report repository.ErrTokenUnavailable when no live row
// matches.
type LedgerStore interface {
	Insert(ctx context.Context, t *model.APIToken) error
	ConsumeLatest(ctx context.Context, token string, now time.Time) (model.APIToken, error)
}

// Grant is a successful consuming check.
type Grant struct {
	UserID    string
	Remaining int
	ExpiresAt time.Time
}

// Ledger issues budgeted API token rows at login and spends them on the
// public read surface.
type Ledger struct {
	codec  TokenVerifier
	store  LedgerStore
	budget int
	ttl    time.Duration
	now    func() time.Time
}

// NewLedger wires a ledger.  Every row gets budget requests and lives for
// ttl after issuance.
func NewLedger(codec TokenVerifier, store LedgerStore, budget int, ttl time.Duration) (*Ledger, error) {
	switch {
	case codec == nil:
		return nil, errors.New("ledger: token verifier is required")
	case store == nil:
		return nil, errors.New("ledger: store is required")
	case budget < 1:
		return nil, fmt.Errorf("ledger: budget must be positive, got %d", budget)
	case ttl <= 0:
		return nil, fmt.Errorf("ledger: ttl must be positive, got %s", ttl)
	}
	return &Ledger{codec: codec, store: store, budget: budget, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the ledger reading time from now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	cp := *l
	cp.now = now
	return &cp
}

// Budget is the number of requests a fresh row allows.
func (l *Ledger) Budget() int { return l.budget }

// Issue records a fresh row for token, owned by userID.
func (l *Ledger) Issue(ctx context.Context, userID, token string) error {
	now := l.now().UTC()
	return l.store.Insert(ctx, &model.APIToken{
		UserID:            userID,
		Token:             token,
		RemainingRequests: l.budget,
		ExpiresAt:         now.Add(l.ttl),
		CreatedAt:         now,
	})
}

// CheckAndConsume verifies token and spends one unit of budget from its
// most recent live row.  It returns ErrInvalidToken or ErrTokenExhausted
// for client-side failures; anything else is a store error.
func (l *Ledger) CheckAndConsume(ctx context.Context, token string) (Grant, error) {
	claims, err := l.codec.Verify(token)
	if err != nil || claims.UserID() == "" {
		return Grant{}, ErrInvalidToken
	}

	row, err := l.store.ConsumeLatest(ctx, token, l.now().UTC())
	if errors.Is(err, repository.ErrTokenUnavailable) {
		return Grant{}, ErrTokenExhausted
	}
	if err != nil {
		return Grant{}, fmt.Errorf("consume api token: %w", err)
	}
	return Grant{UserID: claims.UserID(), Remaining: row.RemainingRequests, ExpiresAt: row.ExpiresAt}, nil
}
