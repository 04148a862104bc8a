package logics

import (
	"context"
	"fmt"
	"strings"

	"amani-server/configs"
	"amani-server/internal/apperrors"
	"amani-server/internal/models"
	"amani-server/internal/utils"

	"go.uber.org/zap"
)

// InvitationSender delivers the account-setup invitation to a new user.
type InvitationSender interface {
	SendInvitationEmail(from, to, name, roleName, inviteLink string) error
}

// ProvisioningRepository creates the linked profile rows in one transaction.
type ProvisioningRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	CreateUserWithRole(ctx context.Context, profile *models.Profile, roleData models.RoleData) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	ListDonors(ctx context.Context) ([]models.DonorProfile, error)
	ListCaseManagers(ctx context.Context) ([]models.CaseManagerProfile, error)
}

// ProvisioningService creates donor and case-manager accounts on behalf of
// admins. The profile and its role extension are written atomically: a failed
// extension insert rolls the whole user back, never leaving a profile without
// its role row.
type ProvisioningService struct {
	profiles ProvisioningRepository
	email    InvitationSender
	logger   *zap.Logger
}

// NewProvisioningService returns a ProvisioningService instance.
func NewProvisioningService(profiles ProvisioningRepository, email InvitationSender, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{profiles: profiles, email: email, logger: logger}
}

// CreateUserWithInvitation provisions a new user and emails them an
// account-setup invitation. Email failure is logged but does not undo the
// already committed user.
func (s *ProvisioningService) CreateUserWithInvitation(ctx context.Context, principal models.Principal, email, name string, role models.Role, roleData models.RoleData) (*models.Profile, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, &apperrors.ValidationError{Field: "email", Message: "must not be empty"}
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, &apperrors.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if role != models.RoleDonor && role != models.RoleCaseManager {
		return nil, &apperrors.ValidationError{Field: "role", Message: "only donor and case_manager accounts can be provisioned"}
	}

	if _, err := s.profiles.GetProfileByEmail(ctx, email); err == nil {
		return nil, &apperrors.ValidationError{Field: "email", Message: "a profile with this email already exists"}
	}

	profile, err := s.profiles.CreateUserWithRole(ctx, &models.Profile{
		Email: email,
		Name:  name,
		Role:  role,
	}, roleData)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInvitationCode(invitePrefixFor(role))
	if err != nil {
		s.logger.Error("failed to generate invitation code", zap.String("email", email), zap.Error(err))
		return profile, nil
	}
	inviteLink := fmt.Sprintf("%s/setup-account?code=%s&email=%s", configs.Configs.Service.BaseURL, code, email)
	if err := s.email.SendInvitationEmail(
		configs.Configs.Email.SenderEmail,
		email,
		name,
		roleDisplayName(role),
		inviteLink,
	); err != nil {
		s.logger.Error("failed to send invitation email",
			zap.String("email", email),
			zap.String("profile_id", profile.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("user provisioned",
		zap.String("profile_id", profile.ID),
		zap.String("role", string(role)),
	)
	return profile, nil
}

// DeleteUser removes a donor or case-manager account. Admin only; the role
// extension row and any assignments cascade with the profile. Admin and family
// accounts are off limits here: family logins disappear with their family row.
func (s *ProvisioningService) DeleteUser(ctx context.Context, principal models.Principal, profileID string) error {
	if !principal.IsAdmin() {
		return apperrors.ErrForbidden
	}
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if profile.Role != models.RoleDonor && profile.Role != models.RoleCaseManager {
		return &apperrors.ValidationError{Field: "id", Message: "only donor and case_manager accounts can be removed"}
	}
	if err := s.profiles.DeleteProfile(ctx, profileID); err != nil {
		return err
	}
	s.logger.Info("user removed",
		zap.String("profile_id", profileID),
		zap.String("role", string(profile.Role)),
	)
	return nil
}

// ListDonors returns every donor account for the admin dashboard.
func (s *ProvisioningService) ListDonors(ctx context.Context, principal models.Principal) ([]models.DonorProfile, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.profiles.ListDonors(ctx)
}

// ListCaseManagers returns every case-manager account for the admin dashboard.
func (s *ProvisioningService) ListCaseManagers(ctx context.Context, principal models.Principal) ([]models.CaseManagerProfile, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.profiles.ListCaseManagers(ctx)
}

func invitePrefixFor(role models.Role) string {
	if role == models.RoleCaseManager {
		return "c"
	}
	return "d"
}

func roleDisplayName(role models.Role) string {
	if role == models.RoleCaseManager {
		return "Case Manager"
	}
	return "Donor"
}
