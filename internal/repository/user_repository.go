package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

const userColumns = "id, email, password_hash, role, last_login, contact_data, created_at"

// UserRepo reads and writes the app_users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u, assigning a fresh uuid and creation time.  The email is
// normalized first.  A taken email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	contact, err := encodeContact(u.ContactData)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO app_users (id, email, password_hash, role, contact_data, created_at) VALUES (?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, u.Role, contact, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec1(ctx, "UPDATE app_users SET last_login=? WHERE id=?", at.UTC(), id)
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec1(ctx, "UPDATE app_users SET password_hash=? WHERE id=?", hash, id)
}

// UpdateContact replaces the whole contact map and returns the updated user.
func (r *UserRepo) UpdateContact(ctx context.Context, id string, contact map[string]any) (model.User, error) {
	raw, err := encodeContact(contact)
	if err != nil {
		return model.User{}, err
	}
	if err := r.exec1(ctx, "UPDATE app_users SET contact_data=? WHERE id=?", raw, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// exec1 runs an update that must touch exactly the row identified by id.
// MySQL reports zero affected rows when the new value equals the old one,
// so a miss is confirmed with an existence check before it becomes
// ErrUserNotFound.
func (r *UserRepo) exec1(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	id := args[len(args)-1]
	var one int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM app_users WHERE id=?", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		lastLogin sql.NullTime
		contact   []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &lastLogin, &contact, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	if len(contact) > 0 {
		if err := json.Unmarshal(contact, &u.ContactData); err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}

func encodeContact(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
