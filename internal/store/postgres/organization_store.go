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

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
// Name uniqueness is also enforced by the organizations_name_key constraint.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	query := `
		SELECT org_id, name, description
		FROM organizations
		WHERE org_id = $1
	`

	var org models.Organization
	err := s.pool.QueryRow(ctx, query, orgID).Scan(
		&org.OrgID,
		&org.Name,
		&org.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return &org, nil
}

// Exists reports whether the organization exists.
func (s *OrganizationStore) Exists(ctx context.Context, orgID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE org_id = $1)`,
		orgID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check organization exists: %w", mapPostgresError(err))
	}

	return exists, nil
}

// NameTaken reports whether an organization other than excludeOrgID has the name.
func (s *OrganizationStore) NameTaken(ctx context.Context, name string, excludeOrgID string) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE name = $1 AND org_id <> $2)`,
		name, excludeOrgID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check organization name: %w", mapPostgresError(err))
	}

	return taken, nil
}

// Create inserts a new organization.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (org_id, name, description)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, org.OrgID, org.Name, org.Description)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Update changes the fields present in update and returns the full updated record.
func (s *OrganizationStore) Update(ctx context.Context, orgID string, update models.OrganizationUpdate) (*models.Organization, error) {
	query := `
		UPDATE organizations SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = NOW()
		WHERE org_id = $1
		RETURNING org_id, name, description
	`

	var org models.Organization
	err := s.pool.QueryRow(ctx, query, orgID, update.Name, update.Description).Scan(
		&org.OrgID,
		&org.Name,
		&org.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", orgID).
		Msg("Updated organization")

	return &org, nil
}
