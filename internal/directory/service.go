// Package directory implements the organization and user operations shared by the
// HTTP API and the queue consumer.
//
// Every operation validates its raw input, checks references and uniqueness against
// the stores and only then writes. Uniqueness checks are reads followed by a write, so
// concurrent writers with the same name or email can both succeed on backends without a
// unique constraint.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
	"github.com/wolfeidau/directory/internal/telemetry"
	"github.com/wolfeidau/directory/internal/validation"
)

// IDGenerator produces identifiers for new records.
type IDGenerator func() (string, error)

// NewV7ID generates time ordered UUIDs.
func NewV7ID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// Service runs the directory operations against a set of stores.
type Service struct {
	orgs      store.OrganizationStore
	users     store.UserStore
	validator *validation.Validator
	newID     IDGenerator
}

// NewService creates a Service backed by stores.
func NewService(stores store.Stores, opts ...Option) *Service {
	s := &Service{
		orgs:      stores.Organizations,
		users:     stores.Users,
		validator: validation.New(),
		newID:     NewV7ID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrganization validates raw, checks the name is free and stores a new organization.
func (s *Service) CreateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error) {
	in, err := s.validator.CreateOrganization(raw)
	if err != nil {
		return nil, validationError(err)
	}

	taken, err := s.orgs.NameTaken(ctx, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(KindConflict, MsgOrganizationNameTaken, nil)
	}

	orgID, err := s.newID()
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		OrgID:       orgID,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, storeError(err)
	}

	telemetry.GetMetrics().OrganizationsCreatedTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().Str("org_id", org.OrgID).Msg("organization created")

	return org, nil
}

// CreateUser validates raw, checks the organization exists and the email is free, and
// stores a new user in that organization.
func (s *Service) CreateUser(ctx context.Context, raw map[string]any) (*models.User, error) {
	in, err := s.validator.CreateUser(raw)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.requireOrganization(ctx, in.OrgID); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(KindConflict, MsgUserEmailTaken, nil)
	}

	userID, err := s.newID()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID: userID,
		OrgID:  in.OrgID,
		Name:   in.Name,
		Email:  in.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err)
	}

	telemetry.GetMetrics().UsersCreatedTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().
		Str("org_id", user.OrgID).
		Str("user_id", user.UserID).
		Msg("user created")

	return user, nil
}

// GetOrganization returns the organization with orgID.
func (s *Service) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, newError(KindNotFound, MsgOrganizationNotFound, err)
		}
		return nil, err
	}
	return org, nil
}

// GetUser returns the user with userID if it belongs to orgID.
func (s *Service) GetUser(ctx context.Context, orgID, userID string) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound, err)
		}
		return nil, err
	}
	if user.OrgID != orgID {
		return nil, newError(KindForbidden, MsgUserNotInOrganization, nil)
	}
	return user, nil
}

// requireOrganization fails with KindMissingReference when the organization a user
// operation refers to does not exist.
func (s *Service) requireOrganization(ctx context.Context, orgID string) error {
	exists, err := s.orgs.Exists(ctx, orgID)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindMissingReference, MsgOrganizationNotFound, nil)
	}
	return nil
}

func validationError(err error) error {
	if validation.IsValidationError(err) {
		return newError(KindValidation, err.Error(), err)
	}
	return err
}

// storeError classifies constraint failures reported by backends that enforce them on write.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrOrganizationNameTaken):
		return newError(KindConflict, MsgOrganizationNameTaken, err)
	case errors.Is(err, store.ErrUserEmailTaken):
		return newError(KindConflict, MsgUserEmailTaken, err)
	case errors.Is(err, store.ErrOrganizationNotFound):
		return newError(KindMissingReference, MsgOrganizationNotFound, err)
	}
	return err
}
