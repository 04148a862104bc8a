package repositories

import (
	"context"
	"errors"
	"fmt"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileRepository persists profiles and their role-specific extensions.
type ProfileRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// GetProfile retrieves a profile by id.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByEmail retrieves a profile by email.
func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return &profile, nil
}

// UpdateProfile applies a partial update and returns the fresh row.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, id string, updates models.ProfileUpdate) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve updated profile: %w", err)
	}
	return &profile, nil
}

// DonorProfileByUserID resolves the donor extension for a profile id.
func (r *ProfileRepository) DonorProfileByUserID(ctx context.Context, userID string) (*models.DonorProfile, error) {
	var donor models.DonorProfile
	if err := r.db.WithContext(ctx).First(&donor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get donor profile: %w", err)
	}
	return &donor, nil
}

// CaseManagerProfileByUserID resolves the case-manager extension for a profile id.
func (r *ProfileRepository) CaseManagerProfileByUserID(ctx context.Context, userID string) (*models.CaseManagerProfile, error) {
	var cm models.CaseManagerProfile
	if err := r.db.WithContext(ctx).First(&cm, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get case manager profile: %w", err)
	}
	return &cm, nil
}

// DonorProfileByID retrieves a donor extension row with its base profile.
func (r *ProfileRepository) DonorProfileByID(ctx context.Context, id string) (*models.DonorProfile, error) {
	var donor models.DonorProfile
	if err := r.db.WithContext(ctx).Preload("Profile").First(&donor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get donor profile: %w", err)
	}
	return &donor, nil
}

// CaseManagerProfileByID retrieves a case-manager extension row with its base profile.
func (r *ProfileRepository) CaseManagerProfileByID(ctx context.Context, id string) (*models.CaseManagerProfile, error) {
	var cm models.CaseManagerProfile
	if err := r.db.WithContext(ctx).Preload("Profile").First(&cm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get case manager profile: %w", err)
	}
	return &cm, nil
}

// ListDonors returns all donor extension rows with base profiles.
func (r *ProfileRepository) ListDonors(ctx context.Context) ([]models.DonorProfile, error) {
	var donors []models.DonorProfile
	if err := r.db.WithContext(ctx).Preload("Profile").Find(&donors).Error; err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

// ListCaseManagers returns all case-manager extension rows with base profiles.
func (r *ProfileRepository) ListCaseManagers(ctx context.Context) ([]models.CaseManagerProfile, error) {
	var cms []models.CaseManagerProfile
	if err := r.db.WithContext(ctx).Preload("Profile").Find(&cms).Error; err != nil {
		return nil, fmt.Errorf("failed to list case managers: %w", err)
	}
	return cms, nil
}

// CreateUserWithRole creates the profile and its role-specific extension in a
// single transaction: a failed extension insert rolls the profile back rather
// than leaving an orphan.
func (r *ProfileRepository) CreateUserWithRole(ctx context.Context, profile *models.Profile, roleData models.RoleData) (*models.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		switch profile.Role {
		case models.RoleDonor:
			donor := models.DonorProfile{
				ID:            uuid.NewString(),
				UserID:        profile.ID,
				PreferredName: roleData.PreferredName,
				Bio:           roleData.Bio,
			}
			if err := tx.Create(&donor).Error; err != nil {
				return fmt.Errorf("failed to create donor profile: %w", err)
			}
		case models.RoleCaseManager:
			cm := models.CaseManagerProfile{
				ID:     uuid.NewString(),
				UserID: profile.ID,
				Title:  roleData.Title,
				Region: roleData.Region,
				Phone:  roleData.Phone,
			}
			if err := tx.Create(&cm).Error; err != nil {
				return fmt.Errorf("failed to create case manager profile: %w", err)
			}
		case models.RoleAdmin, models.RoleFamily:
			// No extension row for these roles.
		default:
			return fmt.Errorf("unknown role: %s", profile.Role)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("user provisioning transaction rolled back",
			zap.String("email", profile.Email),
			zap.Error(err),
		)
		return nil, err
	}
	return profile, nil
}

// DeleteProfile removes a profile row. The donor or case-manager extension row
// goes with it through its ON DELETE CASCADE constraint, as do assignments and
// threads keyed on the profile.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}
