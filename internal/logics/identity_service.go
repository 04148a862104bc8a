package logics

import (
	"context"
	"errors"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// IdentityRepository is the slice of profile persistence the identity service
// needs.
type IdentityRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, updates models.ProfileUpdate) (*models.Profile, error)
	DonorProfileByUserID(ctx context.Context, userID string) (*models.DonorProfile, error)
	CaseManagerProfileByUserID(ctx context.Context, userID string) (*models.CaseManagerProfile, error)
}

// IdentityService resolves authenticated users into principals. Every request
// resolves through here before touching any other service.
type IdentityService struct {
	profiles IdentityRepository
	logger   *zap.Logger
}

// NewIdentityService returns an IdentityService instance.
func NewIdentityService(profiles IdentityRepository, logger *zap.Logger) *IdentityService {
	return &IdentityService{profiles: profiles, logger: logger}
}

// Resolve turns a user id into a principal. A missing or unknown profile fails
// closed with ErrUnauthenticated rather than falling through to a default role.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.Principal, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrReferenceNotFound) {
			s.logger.Warn("rejected session for unknown profile", zap.String("user_id", userID))
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	if !profile.Role.Valid() {
		s.logger.Error("profile carries unknown role",
			zap.String("user_id", userID),
			zap.String("role", string(profile.Role)),
		)
		return nil, apperrors.ErrUnauthenticated
	}
	return &models.Principal{ProfileID: profile.ID, Role: profile.Role}, nil
}

// Profile returns the caller's own profile row.
func (s *IdentityService) Profile(ctx context.Context, principal models.Principal) (*models.Profile, error) {
	return s.profiles.GetProfile(ctx, principal.ProfileID)
}

// UpdateProfile applies a partial update to the caller's own profile. Role is
// not part of ProfileUpdate, so it cannot change here.
func (s *IdentityService) UpdateProfile(ctx context.Context, principal models.Principal, updates models.ProfileUpdate) (*models.Profile, error) {
	return s.profiles.UpdateProfile(ctx, principal.ProfileID, updates)
}

// DonorProfileFor resolves the donor extension of a profile.
func (s *IdentityService) DonorProfileFor(ctx context.Context, userID string) (*models.DonorProfile, error) {
	return s.profiles.DonorProfileByUserID(ctx, userID)
}

// CaseManagerProfileFor resolves the case-manager extension of a profile.
func (s *IdentityService) CaseManagerProfileFor(ctx context.Context, userID string) (*models.CaseManagerProfile, error) {
	return s.profiles.CaseManagerProfileByUserID(ctx, userID)
}
