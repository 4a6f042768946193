package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the fixed lifetime of a session token.
const DefaultSessionTTL = time.Hour

var (
	// ErrMissingSecret is returned when a codec is built without a signing secret.
	ErrMissingSecret = errors.New("session signing secret is not configured")
	// ErrInvalidToken covers malformed, tampered and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)

// SessionClaims is the payload of a session token.  The subject (sub)
// carries the app_users id.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *SessionClaims) UserID() string { return c.Subject }

// SessionToken is a signed session token along with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionCodec signs and verifies HS256 session tokens with a single
// process-wide secret.  It holds no mutable state and is safe for
// concurrent use.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec builds a codec.  An empty secret is a deployment error
// and is rejected here so that no caller ever signs with an empty key.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads time from now.  Both
// minting and verification use it.
func (s *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	cp := *s
	cp.now = now
	return &cp
}

// TTL reports the lifetime given to minted tokens.
func (s *SessionCodec) TTL() time.Duration { return s.ttl }

// Mint signs a token for the given user.  Each token gets a random jti so
// two logins within the same second still produce distinct tokens.
func (s *SessionCodec) Mint(userID, email, role string) (SessionToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// Verify checks signature, algorithm and expiry and returns the decoded
// claims.  Every failure is reported as ErrInvalidToken.
func (s *SessionCodec) Verify(raw string) (*SessionClaims, error) {
	tok, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
