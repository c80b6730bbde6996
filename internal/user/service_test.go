package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
)

// memRepository is an in-memory Repository keyed by username.
type memRepository struct {
	mu     sync.Mutex
	users  map[string]*User
	nextID int

	updateLastLoginErr error
}

func newMemRepository() *memRepository {
	return &memRepository{users: make(map[string]*User)}
}

func (r *memRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return ErrUsernameAlreadyUsed
	}
	r.nextID++
	u.ID = "user-" + strconv.Itoa(r.nextID)
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *memRepository) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateLastLoginErr != nil {
		return r.updateLastLoginErr
	}
	for _, u := range r.users {
		if u.ID == id {
			u.LastLoginAt = &t
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepository) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.IsAdmin = isAdmin
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepository) List(_ context.Context, _ UserFilter) ([]*User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newTestService() (Service, *memRepository) {
	repo := newMemRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4), log), repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "  Alice ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err = svc.Register(ctx, "alice", "password123")
	assert.ErrorIs(t, err, ErrUsernameAlreadyUsed)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"empty username", "   ", "password123", ErrUsernameRequired},
		{"bad characters", "al ice", "password123", ErrUsernameInvalid},
		{"short password", "alice", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, "bob", "password123")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "BOB", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "bob", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIgnoresLastLoginFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.Register(ctx, "bob", "password123")
	require.NoError(t, err)
	repo.updateLastLoginErr = errors.New("db down")

	u, err := svc.Login(ctx, "bob", "password123")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	admin, err := svc.EnsureAdmin(ctx, "root", "password123")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// Existing admin is returned unchanged.
	again, err := svc.EnsureAdmin(ctx, "root", "")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	// Existing user is promoted.
	carol, err := svc.Register(ctx, "carol", "password123")
	require.NoError(t, err)
	promoted, err := svc.EnsureAdmin(ctx, "carol", "")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin)
}

func TestSetAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "dave", "password123")
	require.NoError(t, err)

	updated, err := svc.SetAdmin(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	_, err = svc.SetAdmin(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}
