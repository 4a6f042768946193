package handler

import (
	"context"
	"time"

	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/service"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

// storeTimeout bounds every store round trip made by a handler.
const storeTimeout = 5 * time.Second

// UserStore is the user table.  *repository.UserRepo and
// *repository.Memory satisfy it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateContact(ctx context.Context, id string, contact map[string]any) (model.User, error)
}

// SessionMinter mints session tokens.  *utils.SessionCodec satisfies it.
type SessionMinter interface {
	Mint(userID, email, role string) (utils.SessionToken, error)
}

// LedgerIssuer records the API token ledger row for a fresh session.
type LedgerIssuer interface {
	Issue(ctx context.Context, userID, token string) error
}

// Syncer runs one resource synchronization.
type Syncer interface {
	Sync(ctx context.Context, resource string) (service.SyncResult, error)
}

// ResourcePurger wipes a resource table.
type ResourcePurger interface {
	DeleteAll(ctx context.Context, kind model.Kind) (int64, error)
}

// ResourceReader serves paginated listings.
type ResourceReader interface {
	List(ctx context.Context, resource string, limit, offset int, baseURL string) (service.Page, error)
}
