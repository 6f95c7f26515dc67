package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT user_id, org_id, name, email
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.OrgID,
		&user.Name,
		&user.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return &user, nil
}

// Exists reports whether the user exists.
func (s *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user exists: %w", mapPostgresError(err))
	}

	return exists, nil
}

// EmailTaken reports whether a user other than excludeUserID has the email.
func (s *UserStore) EmailTaken(ctx context.Context, email string, excludeUserID string) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`,
		email, excludeUserID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check user email: %w", mapPostgresError(err))
	}

	return taken, nil
}

// Create inserts a new user. The organization must already exist.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, org_id, name, email)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, user.UserID, user.OrgID, user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.UserID).
		Str("org_id", user.OrgID).
		Msg("Created user")

	return nil
}

// Update changes the fields present in update and returns the full updated record.
func (s *UserStore) Update(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, org_id, name, email
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, userID, update.Name, update.Email).Scan(
		&user.UserID,
		&user.OrgID,
		&user.Name,
		&user.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", userID).
		Msg("Updated user")

	return &user, nil
}
