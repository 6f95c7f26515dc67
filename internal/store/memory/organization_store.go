package memory

import (
	"context"
	"sync"

	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing and local development - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[string]*models.Organization // org_id -> Organization
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[string]*models.Organization),
	}
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	// Clone to avoid external modifications
	clone := *org
	return &clone, nil
}

// Exists reports whether the organization is stored.
func (s *OrganizationStore) Exists(ctx context.Context, orgID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.organizations[orgID]
	return exists, nil
}

// NameTaken scans for another organization using name.
func (s *OrganizationStore) NameTaken(ctx context.Context, name string, excludeOrgID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, org := range s.organizations {
		if org.Name == name && id != excludeOrgID {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the organization, replacing any record with the same ID.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *org
	s.organizations[org.OrgID] = &clone

	return nil
}

// Update applies the present fields and returns a copy of the result.
func (s *OrganizationStore) Update(ctx context.Context, orgID string, update models.OrganizationUpdate) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	update.Apply(org)

	clone := *org
	return &clone, nil
}
