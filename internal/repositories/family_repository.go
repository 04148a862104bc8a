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

// FamilyRepository persists families and their children.
type FamilyRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFamilyRepository creates a new family repository instance
func NewFamilyRepository(db *gorm.DB, logger *zap.Logger) *FamilyRepository {
	return &FamilyRepository{db: db, logger: logger}
}

// GetFamily retrieves a family with its children.
func (r *FamilyRepository) GetFamily(ctx context.Context, id string) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Preload("Children").First(&family, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &family, nil
}

// GetFamilyByUserID resolves the family linked to a portal login.
func (r *FamilyRepository) GetFamilyByUserID(ctx context.Context, userID string) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Preload("Children").First(&family, "family_user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get family by user: %w", err)
	}
	return &family, nil
}

// ListFamilies returns all families, optionally filtered by status.
func (r *FamilyRepository) ListFamilies(ctx context.Context, status *models.FamilyStatus) ([]models.Family, error) {
	query := r.db.WithContext(ctx).Preload("Children")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var families []models.Family
	if err := query.Order("created_at DESC").Find(&families).Error; err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// ListFamiliesByIDs returns the families matching the given ids.
func (r *FamilyRepository) ListFamiliesByIDs(ctx context.Context, ids []string) ([]models.Family, error) {
	if len(ids) == 0 {
		return []models.Family{}, nil
	}
	var families []models.Family
	if err := r.db.WithContext(ctx).Preload("Children").Where("id IN ?", ids).Order("created_at DESC").Find(&families).Error; err != nil {
		return nil, fmt.Errorf("failed to list families by ids: %w", err)
	}
	return families, nil
}

// CreateFamily inserts a new family.
func (r *FamilyRepository) CreateFamily(ctx context.Context, family *models.Family) (*models.Family, error) {
	if family.ID == "" {
		family.ID = uuid.NewString()
	}
	if family.Status == "" {
		family.Status = models.FamilyActive
	}
	if err := r.db.WithContext(ctx).Create(family).Error; err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}
	return family, nil
}

// UpdateFamily applies a partial update and returns the fresh row.
func (r *FamilyRepository) UpdateFamily(ctx context.Context, id string, updates models.FamilyUpdate) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&family).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update family: %w", err)
	}

	if err := r.db.WithContext(ctx).Preload("Children").First(&family, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve updated family: %w", err)
	}
	return &family, nil
}

// GetChild retrieves a child row.
func (r *FamilyRepository) GetChild(ctx context.Context, id string) (*models.Child, error) {
	var child models.Child
	if err := r.db.WithContext(ctx).First(&child, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return &child, nil
}

// CreateChild inserts a child under an existing family.
func (r *FamilyRepository) CreateChild(ctx context.Context, child *models.Child) (*models.Child, error) {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Family{}).Where("id = ?", child.FamilyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check family: %w", err)
	}
	if count == 0 {
		return nil, apperrors.ErrReferenceNotFound
	}
	if err := r.db.WithContext(ctx).Create(child).Error; err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return child, nil
}

// UpdateChild applies a partial update to a child and returns the fresh row.
func (r *FamilyRepository) UpdateChild(ctx context.Context, id string, updates models.ChildUpdate) (*models.Child, error) {
	var child models.Child
	if err := r.db.WithContext(ctx).First(&child, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&child).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}

	if err := r.db.WithContext(ctx).First(&child, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve updated child: %w", err)
	}
	return &child, nil
}

// DeleteFamily removes a family row. Children, assignments, threads and posts
// go with it through the ON DELETE CASCADE constraints.
func (r *FamilyRepository) DeleteFamily(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Family{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete family: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}

// DeleteChild removes a child row.
func (r *FamilyRepository) DeleteChild(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Child{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete child: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}
