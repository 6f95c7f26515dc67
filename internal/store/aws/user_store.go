package aws

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

var _ store.UserStore = (*UserStore)(nil)

// UserStore is a DynamoDB implementation of store.UserStore.
// The table is keyed on userId with a GSI named email-index over email.
type UserStore struct {
	table table
}

// NewUserStore creates a new DynamoDB user store
func NewUserStore(client Client, tableName string) *UserStore {
	return &UserStore{
		table: table{
			client:     client,
			name:       tableName,
			keyAttr:    models.AttrUserID,
			indexName:  UserEmailIndex,
			uniqueAttr: models.AttrEmail,
		},
	}
}

// Get retrieves a user by ID
func (s *UserStore) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	found, err := s.table.get(ctx, userID, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// Exists reports whether the user exists
func (s *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	return s.table.exists(ctx, userID)
}

// EmailTaken queries email-index for another user with the same email
func (s *UserStore) EmailTaken(ctx context.Context, email string, excludeUserID string) (bool, error) {
	return s.table.taken(ctx, email, excludeUserID)
}

// Create stores a new user
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.table.put(ctx, user); err != nil {
		return err
	}

	log.Debug().
		Str("user_id", user.UserID).
		Str("org_id", user.OrgID).
		Msg("user created")

	return nil
}

// Update applies a partial update and returns the updated user
func (s *UserStore) Update(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	var user models.User
	found, err := s.table.update(ctx, userID, update.Fields(), &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrUserNotFound
	}

	log.Debug().
		Str("user_id", userID).
		Msg("user updated")

	return &user, nil
}
