package memory

import (
	"context"
	"sync"

	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users map[string]*models.User // user_id -> User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*models.User),
	}
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// Exists reports whether the user is stored.
func (s *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.users[userID]
	return exists, nil
}

// EmailTaken scans for another user with the same email.
func (s *UserStore) EmailTaken(ctx context.Context, email string, excludeUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, user := range s.users {
		if user.Email == email && id != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the user, replacing any record with the same ID.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *user
	s.users[user.UserID] = &clone

	return nil
}

// Update applies the present fields and returns a copy of the result.
func (s *UserStore) Update(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	update.Apply(user)

	clone := *user
	return &clone, nil
}
