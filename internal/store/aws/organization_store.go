package aws

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// OrganizationStore is a DynamoDB implementation of store.OrganizationStore.
// The table is keyed on orgId with a GSI named name-index over name.
type OrganizationStore struct {
	table table
}

// NewOrganizationStore creates a new DynamoDB organization store
func NewOrganizationStore(client Client, tableName string) *OrganizationStore {
	return &OrganizationStore{
		table: table{
			client:     client,
			name:       tableName,
			keyAttr:    models.AttrOrgID,
			indexName:  OrganizationNameIndex,
			uniqueAttr: models.AttrName,
		},
	}
}

// Get retrieves an organization by ID
func (s *OrganizationStore) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	var org models.Organization
	found, err := s.table.get(ctx, orgID, &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrOrganizationNotFound
	}
	return &org, nil
}

// Exists reports whether the organization exists
func (s *OrganizationStore) Exists(ctx context.Context, orgID string) (bool, error) {
	return s.table.exists(ctx, orgID)
}

// NameTaken queries name-index for another organization with the same name
func (s *OrganizationStore) NameTaken(ctx context.Context, name string, excludeOrgID string) (bool, error) {
	return s.table.taken(ctx, name, excludeOrgID)
}

// Create stores a new organization
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	if err := s.table.put(ctx, org); err != nil {
		return err
	}

	log.Debug().
		Str("org_id", org.OrgID).
		Str("name", org.Name).
		Msg("organization created")

	return nil
}

// Update applies a partial update and returns the updated organization
func (s *OrganizationStore) Update(ctx context.Context, orgID string, update models.OrganizationUpdate) (*models.Organization, error) {
	var org models.Organization
	found, err := s.table.update(ctx, orgID, update.Fields(), &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrOrganizationNotFound
	}

	log.Debug().
		Str("org_id", orgID).
		Msg("organization updated")

	return &org, nil
}
