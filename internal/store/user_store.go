package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/directory/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserEmailTaken = errors.New("user email already taken")
)

// UserStore defines the data access operations for users.
type UserStore interface {
	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID string) (*models.User, error)

	// Exists reports whether a user with the given ID exists.
	Exists(ctx context.Context, userID string) (bool, error)

	// EmailTaken reports whether any user other than excludeUserID uses email.
	// Emails are unique across all organizations.
	EmailTaken(ctx context.Context, email string, excludeUserID string) (bool, error)

	// Create stores a new user unconditionally.
	Create(ctx context.Context, user *models.User) error

	// Update applies the present fields of update and returns the full record after the write.
	// Returns ErrUserNotFound if the user doesn't exist.
	Update(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error)
}
