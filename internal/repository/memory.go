package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// Memory is a mutex-guarded in-memory store with the same semantics as the
// MySQL repositories: unique emails, ledger rows consumed atomically and
// resource tables upserted on external_id.  Tests across the module run
// against it.
type Memory struct {
	mu sync.Mutex

	users     map[string]*model.User // by id
	userEmail map[string]string      // email -> id

	tokens  []*model.APIToken
	tokenID uint64

	resources map[model.Kind]*memTable
}

type memTable struct {
	rows   []model.Row
	byKey  map[int64]int // external_id -> index in rows
	nextID int64
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	m := &Memory{
		users:     make(map[string]*model.User),
		userEmail: make(map[string]string),
		resources: make(map[model.Kind]*memTable),
	}
	for _, k := range model.Kinds {
		m.resources[k] = &memTable{byKey: make(map[int64]int)}
	}
	return m
}

// ---------- Users ----------

func (m *Memory) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, taken := m.userEmail[email]; taken {
		return ErrEmailExists
	}
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	cp := *u
	m.users[u.ID] = &cp
	m.userEmail[email] = u.ID
	return nil
}

func (m *Memory) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.userEmail[normalizeEmail(email)]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return *m.users[id], nil
}

func (m *Memory) GetByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return *u, nil
}

func (m *Memory) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return m.mutateUser(id, func(u *model.User) {
		t := at.UTC()
		u.LastLogin = &t
	})
}

func (m *Memory) UpdatePassword(_ context.Context, id, hash string) error {
	return m.mutateUser(id, func(u *model.User) { u.PasswordHash = hash })
}

func (m *Memory) UpdateContact(ctx context.Context, id string, contact map[string]any) (model.User, error) {
	if err := m.mutateUser(id, func(u *model.User) { u.ContactData = contact }); err != nil {
		return model.User{}, err
	}
	return m.GetByID(ctx, id)
}

func (m *Memory) mutateUser(id string, fn func(*model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(u)
	return nil
}

// ---------- API token ledger ----------

func (m *Memory) Insert(_ context.Context, t *model.APIToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenID++
	t.ID = m.tokenID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	m.tokens = append(m.tokens, &cp)
	return nil
}

// ConsumeLatest finds and decrements under one lock, which gives the same
// exactly-once guarantee as the row lock in TokenRepo.
func (m *Memory) ConsumeLatest(_ context.Context, token string, now time.Time) (model.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *model.APIToken
	for _, t := range m.tokens {
		if t.Token != token || !t.Live(now) {
			continue
		}
		if best == nil || t.CreatedAt.After(best.CreatedAt) ||
			(t.CreatedAt.Equal(best.CreatedAt) && t.ID > best.ID) {
			best = t
		}
	}
	if best == nil {
		return model.APIToken{}, ErrTokenUnavailable
	}
	best.RemainingRequests--
	return *best, nil
}

// ExpireAll moves every ledger row's expiry to at.
func (m *Memory) ExpireAll(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		t.ExpiresAt = at
	}
}

// Tokens returns a snapshot of the ledger.
func (m *Memory) Tokens() []model.APIToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.APIToken, len(m.tokens))
	for i, t := range m.tokens {
		out[i] = *t
	}
	return out
}

// ---------- Resources ----------

func (m *Memory) Upsert(_ context.Context, kind model.Kind, rows []model.Row) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.resources[kind]
	for _, row := range rows {
		if i, ok := tbl.byKey[row.Key()]; ok {
			row.SetID(tbl.rows[i].LocalID())
			tbl.rows[i] = row
			continue
		}
		tbl.nextID++
		row.SetID(tbl.nextID)
		tbl.byKey[row.Key()] = len(tbl.rows)
		tbl.rows = append(tbl.rows, row)
	}
	return len(rows), nil
}

func (m *Memory) Count(_ context.Context, kind model.Kind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources[kind].rows), nil
}

func (m *Memory) List(_ context.Context, kind model.Kind, limit, offset int) ([]model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]model.Row(nil), m.resources[kind].rows...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].LocalID() < rows[j].LocalID() })
	if offset >= len(rows) {
		return []model.Row{}, nil
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end], nil
}

func (m *Memory) DeleteAll(_ context.Context, kind model.Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.resources[kind]
	n := int64(len(tbl.rows))
	tbl.rows = nil
	tbl.byKey = make(map[int64]int)
	return n, nil
}
