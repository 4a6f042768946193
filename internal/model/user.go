package model

import "time"

// Role values stored in app_users.role.  No other value is accepted.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether r is one of the two known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an application user record as stored in the
// `app_users` table.  ContactData is an opaque JSON object owned by the
// user; the service never inspects its keys.
//
// Fields:
//
//	ID           – uuid primary key.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash, never serialized.
//	Role         – admin or user.
//	LastLogin    – time of the last successful login (nil before the first one).
//	ContactData  – free-form contact map.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Role         string         `json:"role"`
	LastLogin    *time.Time     `json:"last_login"`
	ContactData  map[string]any `json:"contact_data"`
	CreatedAt    time.Time      `json:"created_at"`
}

// APIToken models a row of the `api_tokens` ledger.  One row is written
// per login, keyed by the session token that login produced.  The row is
// never deleted; once RemainingRequests reaches zero or ExpiresAt passes
// it simply stops matching.
type APIToken struct {
	ID                uint64    // api_tokens.id
	UserID            string    // api_tokens.user_id
	Token             string    // api_tokens.token (the raw session token)
	RemainingRequests int       // api_tokens.remaining_requests
	ExpiresAt         time.Time // api_tokens.expires_at
	CreatedAt         time.Time // api_tokens.created_at
}

// Live reports whether the record can still be consumed at now.
func (t APIToken) Live(now time.Time) bool {
	return t.RemainingRequests > 0 && t.ExpiresAt.After(now)
}
