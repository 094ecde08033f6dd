package users_test

import (
	"context"
	"database/sql"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	users "github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// memoryUsers is an in-memory stand-in for the bun backed store. Methods
// the tests never reach fall through to the embedded nil interface and
// panic, which keeps the fake honest about what it supports.
type memoryUsers struct {
	users.Users

	mu      sync.Mutex
	records map[uuid.UUID]*users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		records: map[uuid.UUID]*users.User{},
	}
}

func cloneUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (m *memoryUsers) put(u *users.User) *users.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (m *memoryUsers) Register(ctx context.Context, user *users.User) (*users.User, error) {
	return m.RegisterTx(ctx, nil, user)
}

func (m *memoryUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	for _, existing := range m.records {
		if existing.Email == user.Email {
			return nil, goerrors.New("duplicate email", goerrors.CategoryConflict)
		}
	}

	m.records[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.GetByEmailTx(ctx, nil, email)
}

func (m *memoryUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.records {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}

	return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
		"email": email,
	})
}

func (m *memoryUsers) FindByID(ctx context.Context, id uuid.UUID, activeOnly bool) (*users.User, error) {
	return m.FindByIDTx(ctx, nil, id, activeOnly)
}

func (m *memoryUsers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID, activeOnly bool) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.records[id]
	if !ok || (activeOnly && !u.Active) {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	return cloneUser(u), nil
}

func (m *memoryUsers) ListActive(ctx context.Context) ([]*users.User, error) {
	return m.ListActiveTx(ctx, nil)
}

func (m *memoryUsers) ListActiveTx(ctx context.Context, tx bun.IDB) ([]*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*users.User{}
	for _, u := range m.records {
		if u.Active {
			out = append(out, cloneUser(u))
		}
	}

	return out, nil
}

func (m *memoryUsers) Deactivate(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return m.DeactivateTx(ctx, nil, id)
}

func (m *memoryUsers) DeactivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.records[id]
	if !ok || !u.Active {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	u.Active = false
	return cloneUser(u), nil
}

// UpdateTx mirrors the ORM behavior of skipping zero value fields.
func (m *memoryUsers) UpdateTx(ctx context.Context, tx bun.IDB, record *users.User, criteria ...repository.UpdateCriteria) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.records[record.ID]
	if !ok {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": record.ID.String(),
		})
	}

	if record.Username != "" {
		u.Username = record.Username
	}
	if record.Email != "" {
		u.Email = record.Email
	}
	if record.PasswordHash != "" {
		u.PasswordHash = record.PasswordHash
	}
	if record.Role != "" {
		u.Role = record.Role
	}

	return cloneUser(u), nil
}

// failingUsers simulates a store outage on email lookups.
type failingUsers struct {
	*memoryUsers
	getByEmailErr error
}

func (f *failingUsers) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, f.getByEmailErr
}

// fakeRepoManager runs transaction callbacks inline against memoryUsers.
type fakeRepoManager struct {
	users *memoryUsers
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newMemoryUsers()}
}

func (f *fakeRepoManager) Users() users.Users {
	return f.users
}

func (f *fakeRepoManager) Validate() error {
	return nil
}

func (f *fakeRepoManager) MustValidate() {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

// outageRepoManager serves a store whose email lookups fail outright.
type outageRepoManager struct {
	*fakeRepoManager
	err error
}

func (f *outageRepoManager) Users() users.Users {
	return &failingUsers{memoryUsers: f.fakeRepoManager.users, getByEmailErr: f.err}
}
