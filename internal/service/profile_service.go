package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/repository"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// Identity carries the attributes the identity provider supplies for the
// current session.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// ProfileService manages lazily created user profiles.
type ProfileService struct {
	profiles    repository.ProfileRepository
	adminEmails map[string]struct{}
}

// NewProfileService constructs the service. adminEmails lists identities
// granted the administrator role.
func NewProfileService(profiles repository.ProfileRepository, adminEmails []string) *ProfileService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &ProfileService{profiles: profiles, adminEmails: admins}
}

// Ensure returns the profile for the identity, creating it on first login.
// A configured admin email is promoted even when the profile predates the
// configuration.
func (s *ProfileService) Ensure(ctx context.Context, identity Identity) (*domain.UserProfile, error) {
	if identity.ID == "" {
		return nil, apperrors.NewUnauthorized("identity required")
	}

	profile, err := s.profiles.GetByID(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		profile = &domain.UserProfile{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  s.roleFor(identity.Email),
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if s.roleFor(profile.Email) == domain.RoleAdmin && profile.Role != domain.RoleAdmin {
		profile.Role = domain.RoleAdmin
		if err := s.profiles.Update(ctx, profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// ProfileUpdateInput describes the editable profile fields.
type ProfileUpdateInput struct {
	Name      string
	Mobile    *string
	Education string
	College   *string
	Onboarded *bool
}

// Update edits display attributes on the caller's own profile. Role and
// email are not editable here.
func (s *ProfileService) Update(ctx context.Context, identityID string, input ProfileUpdateInput) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", nil)
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	profile.Name = name
	profile.Mobile = input.Mobile
	profile.Education = strings.TrimSpace(input.Education)
	profile.College = input.College
	if input.Onboarded != nil {
		profile.Onboarded = *input.Onboarded
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) roleFor(email string) domain.Role {
	if _, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
