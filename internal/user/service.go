package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
)

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*User, error)
	// EnsureAdmin creates an admin account, or promotes an existing one.
	EnsureAdmin(ctx context.Context, username, password string) (*User, error)
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    *slog.Logger
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, log *slog.Logger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

func validate(username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	clean := normalizeUsername(username)
	if err := validate(clean, password); err != nil {
		return nil, err
	}

	// Hash the password.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:     clean,
		PasswordHash: hash,
	}

	// Uniqueness is left to the users_username_unique constraint.
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameAlreadyUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	clean := normalizeUsername(username)
	if clean == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, clean)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}

	// Compare password hash.
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Update last_login_at (best effort; do not fail login if update fails).
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.WarnContext(ctx, "failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) SetAdmin(ctx context.Context, id string, isAdmin bool) (*User, error) {
	if err := s.repo.SetAdmin(ctx, id, isAdmin); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user admin flag changed", "user_id", id, "is_admin", isAdmin)
	return s.repo.GetByID(ctx, id)
}

func (s *service) EnsureAdmin(ctx context.Context, username, password string) (*User, error) {
	clean := normalizeUsername(username)

	existing, err := s.repo.GetByUsername(ctx, clean)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		return s.SetAdmin(ctx, existing.ID, true)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := validate(clean, password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{Username: clean, PasswordHash: hash, IsAdmin: true}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.InfoContext(ctx, "admin created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// normalizeUsername trims spaces and lowercases the username.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
