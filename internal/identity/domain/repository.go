package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserSummary is a user with the number of tasks it owns.
type UserSummary struct {
	User      *User
	TaskCount int
}

// UserRepository persists users.
type UserRepository interface {
	// Save inserts the user or updates its role.
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email Email) (*User, error)
	// ListWithTaskCounts returns every user ordered by email.
	ListWithTaskCounts(ctx context.Context) ([]UserSummary, error)
}
