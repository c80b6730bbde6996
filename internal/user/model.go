package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "user not found")
	ErrUsernameAlreadyUsed = apperror.New(http.StatusConflict, "username already used")
	ErrInvalidCredentials  = apperror.New(http.StatusUnauthorized, "invalid username or password")
	ErrUsernameRequired    = apperror.New(http.StatusBadRequest, "username is required")
	ErrUsernameInvalid     = apperror.New(http.StatusBadRequest, "username may only contain letters, digits, '.', '-' and '_'")
	ErrPasswordTooShort    = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// User represents an account that can book desks.
type User struct {
	ID           string // UUID
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Username string // substring match
	IsAdmin  *bool  // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
