package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/directory/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrOrganizationNameTaken is only returned by backends that enforce name
	// uniqueness on write. Other backends rely on NameTaken being checked first.
	ErrOrganizationNameTaken = errors.New("organization name already taken")
)

// OrganizationStore defines the data access operations for organizations.
// Organizations are tenants; each user belongs to exactly one of them.
type OrganizationStore interface {
	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID string) (*models.Organization, error)

	// Exists reports whether an organization with the given ID exists.
	Exists(ctx context.Context, orgID string) (bool, error)

	// NameTaken reports whether any organization other than excludeOrgID uses name.
	// An empty excludeOrgID excludes nothing. The match is exact and case-sensitive.
	NameTaken(ctx context.Context, name string, excludeOrgID string) (bool, error)

	// Create stores a new organization. The caller generates the ID and guarantees
	// it is fresh; the write is unconditional.
	Create(ctx context.Context, org *models.Organization) error

	// Update applies the present fields of update and returns the full record after the write.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Update(ctx context.Context, orgID string, update models.OrganizationUpdate) (*models.Organization, error)
}
