package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// TokenRepo is the MySQL side of the API token ledger (api_tokens).
// Lookups go through the stored SHA-256 of the token so the long JWT
// string itself does not need an index.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Insert writes a new ledger row and fills in its id.
func (r *TokenRepo) Insert(ctx context.Context, t *model.APIToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO api_tokens (user_id, token, remaining_requests, expires_at, created_at) VALUES (?,?,?,?,?)",
		t.UserID, t.Token, t.RemainingRequests, t.ExpiresAt.UTC(), t.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ConsumeLatest takes one unit of budget from the most recent live row for
// token and returns that row as it is after the decrement.
//
// The row is locked with SELECT ... FOR UPDATE inside a transaction, so
// concurrent consumers of the same token queue behind each other and each
// sees the count the previous one left.  The decrement is additionally
// conditioned on remaining_requests > 0.  When nothing matches the result
// is ErrTokenUnavailable.
func (r *TokenRepo) ConsumeLatest(ctx context.Context, token string, now time.Time) (model.APIToken, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.APIToken{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT id, user_id, token, remaining_requests, expires_at, created_at
	             FROM api_tokens
	             WHERE token_hash = SHA2(?, 256) AND token = ? AND expires_at > ? AND remaining_requests > 0
	             ORDER BY created_at DESC, id DESC
	             LIMIT 1
	             FOR UPDATE`
	var t model.APIToken
	err = tx.QueryRowContext(ctx, sel, token, token, now.UTC()).Scan(
		&t.ID, &t.UserID, &t.Token, &t.RemainingRequests, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.APIToken{}, ErrTokenUnavailable
		}
		return model.APIToken{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE api_tokens SET remaining_requests = remaining_requests - 1 WHERE id = ? AND remaining_requests > 0",
		t.ID)
	if err != nil {
		return model.APIToken{}, err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return model.APIToken{}, ErrTokenUnavailable
	}
	if err := tx.Commit(); err != nil {
		return model.APIToken{}, err
	}
	committed = true
	t.RemainingRequests--
	return t, nil
}
