package directory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

// UpdateOrganization applies a partial update to an existing organization.
//
// The organization must exist, a new name must not belong to another organization and
// at least one of name or description must be present. Nothing is written unless every
// check passes.
func (s *Service) UpdateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error) {
	in, err := s.validator.UpdateOrganization(raw)
	if err != nil {
		return nil, validationError(err)
	}

	exists, err := s.orgs.Exists(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newError(KindNotFound, MsgOrganizationNotFound, nil)
	}

	update := models.OrganizationUpdate{
		Name:        in.Name,
		Description: in.Description,
	}

	if update.Name != nil {
		taken, err := s.orgs.NameTaken(ctx, *update.Name, in.OrgID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, newError(KindConflict, MsgOrganizationNameTaken, nil)
		}
	}

	if update.IsEmpty() {
		return nil, newError(KindValidation, MsgEmptyOrganizationUpdate, nil)
	}

	org, err := s.orgs.Update(ctx, in.OrgID, update)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, newError(KindNotFound, MsgOrganizationNotFound, err)
		}
		return nil, storeError(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("org_id", org.OrgID).
		Int("fields", len(update.Fields())).
		Msg("organization updated")

	return org, nil
}

// UpdateUser applies a partial update to an existing user.
//
// The organization must exist, the user must exist and belong to it, a new email must
// not belong to another user and at least one of name or email must be present.
func (s *Service) UpdateUser(ctx context.Context, raw map[string]any) (*models.User, error) {
	in, err := s.validator.UpdateUser(raw)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.requireOrganization(ctx, in.OrgID); err != nil {
		return nil, err
	}

	current, err := s.users.Get(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound, err)
		}
		return nil, err
	}
	if current.OrgID != in.OrgID {
		return nil, newError(KindForbidden, MsgUserNotInOrganization, nil)
	}

	update := models.UserUpdate{
		Name:  in.Name,
		Email: in.Email,
	}

	if update.Email != nil {
		taken, err := s.users.EmailTaken(ctx, *update.Email, in.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, newError(KindConflict, MsgUserEmailTaken, nil)
		}
	}

	if update.IsEmpty() {
		return nil, newError(KindValidation, MsgEmptyUserUpdate, nil)
	}

	user, err := s.users.Update(ctx, in.UserID, update)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound, err)
		}
		return nil, storeError(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("org_id", user.OrgID).
		Str("user_id", user.UserID).
		Int("fields", len(update.Fields())).
		Msg("user updated")

	return user, nil
}
