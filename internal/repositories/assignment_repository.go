package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRepository persists donor↔family and case-manager↔family edges.
type AssignmentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAssignmentRepository creates a new assignment repository instance
func NewAssignmentRepository(db *gorm.DB, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{db: db, logger: logger}
}

// CreateDonorAssignment inserts a new donor↔family edge. The duplicate-active
// check runs inside the same transaction as the insert; the partial unique
// index on (donor_id, family_id) WHERE status='active' backstops it under
// concurrent writers.
func (r *AssignmentRepository) CreateDonorAssignment(ctx context.Context, donorID, familyID string) (*models.DonorFamilyAssignment, error) {
	assignment := models.DonorFamilyAssignment{
		ID:        uuid.NewString(),
		DonorID:   donorID,
		FamilyID:  familyID,
		Status:    models.AssignmentActive,
		StartDate: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.DonorFamilyAssignment{}).
			Where("donor_id = ? AND family_id = ? AND status = ?", donorID, familyID, models.AssignmentActive).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing assignment: %w", err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateActiveAssignment
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to create donor assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CreateCaseManagerAssignment inserts a new case-manager↔family edge. The edge
// carries no status; a second row for the same pair is rejected as a duplicate.
func (r *AssignmentRepository) CreateCaseManagerAssignment(ctx context.Context, cmID, familyID string) (*models.CaseManagerFamilyAssignment, error) {
	assignment := models.CaseManagerFamilyAssignment{
		ID:            uuid.NewString(),
		CaseManagerID: cmID,
		FamilyID:      familyID,
		StartDate:     time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CaseManagerFamilyAssignment{}).
			Where("case_manager_id = ? AND family_id = ?", cmID, familyID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing assignment: %w", err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateActiveAssignment
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to create case manager assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetDonorAssignment retrieves a donor↔family edge by id.
func (r *AssignmentRepository) GetDonorAssignment(ctx context.Context, id string) (*models.DonorFamilyAssignment, error) {
	var assignment models.DonorFamilyAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get donor assignment: %w", err)
	}
	return &assignment, nil
}

// UpdateDonorAssignmentStatus transitions the edge to the given status. Ending
// sets end_date; reactivating clears it and re-checks the one-active invariant.
func (r *AssignmentRepository) UpdateDonorAssignmentStatus(ctx context.Context, id string, status models.AssignmentStatus) (*models.DonorFamilyAssignment, error) {
	var assignment models.DonorFamilyAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&assignment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReferenceNotFound
			}
			return fmt.Errorf("failed to get donor assignment: %w", err)
		}

		if assignment.Status == models.AssignmentEnded {
			return apperrors.ErrInvalidTransition
		}

		updates := map[string]interface{}{"status": status}
		if status == models.AssignmentEnded {
			updates["end_date"] = time.Now().UTC()
		}
		if err := tx.Model(&assignment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update donor assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve updated assignment: %w", err)
	}
	return &assignment, nil
}

// DeleteDonorAssignment removes a donor↔family edge outright, history
// included. Ending via status is the usual path; deletion is for edges created
// in error.
func (r *AssignmentRepository) DeleteDonorAssignment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.DonorFamilyAssignment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete donor assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}

// DeleteCaseManagerAssignment removes a case-manager↔family edge, revoking the
// case manager's access to that family.
func (r *AssignmentRepository) DeleteCaseManagerAssignment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.CaseManagerFamilyAssignment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete case manager assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}

// ListDonorAssignments returns all edges for a donor, newest first.
func (r *AssignmentRepository) ListDonorAssignments(ctx context.Context, donorID string) ([]models.DonorFamilyAssignment, error) {
	var assignments []models.DonorFamilyAssignment
	if err := r.db.WithContext(ctx).Preload("Family").
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list donor assignments: %w", err)
	}
	return assignments, nil
}

// ListFamilyDonorAssignments returns all donor edges for a family.
func (r *AssignmentRepository) ListFamilyDonorAssignments(ctx context.Context, familyID string) ([]models.DonorFamilyAssignment, error) {
	var assignments []models.DonorFamilyAssignment
	if err := r.db.WithContext(ctx).Preload("Donor").
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list family donor assignments: %w", err)
	}
	return assignments, nil
}

// ListCaseManagerAssignments returns all edges for a case manager.
func (r *AssignmentRepository) ListCaseManagerAssignments(ctx context.Context, cmID string) ([]models.CaseManagerFamilyAssignment, error) {
	var assignments []models.CaseManagerFamilyAssignment
	if err := r.db.WithContext(ctx).Preload("Family").
		Where("case_manager_id = ?", cmID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list case manager assignments: %w", err)
	}
	return assignments, nil
}

// ListFamilyCaseManagerAssignments returns all case-manager edges for a family.
func (r *AssignmentRepository) ListFamilyCaseManagerAssignments(ctx context.Context, familyID string) ([]models.CaseManagerFamilyAssignment, error) {
	var assignments []models.CaseManagerFamilyAssignment
	if err := r.db.WithContext(ctx).Preload("CaseManager").
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list family case manager assignments: %w", err)
	}
	return assignments, nil
}

// HasActiveDonorAssignment reports whether the donor is actively assigned to
// the family.
func (r *AssignmentRepository) HasActiveDonorAssignment(ctx context.Context, donorID, familyID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DonorFamilyAssignment{}).
		Where("donor_id = ? AND family_id = ? AND status = ?", donorID, familyID, models.AssignmentActive).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check donor assignment: %w", err)
	}
	return count > 0, nil
}

// HasCaseManagerAssignment reports whether the case manager is assigned to the
// family. Presence of the edge grants access.
func (r *AssignmentRepository) HasCaseManagerAssignment(ctx context.Context, cmID, familyID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CaseManagerFamilyAssignment{}).
		Where("case_manager_id = ? AND family_id = ?", cmID, familyID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check case manager assignment: %w", err)
	}
	return count > 0, nil
}

// ActiveFamilyIDsForDonor returns the ids of families the donor is actively
// assigned to.
func (r *AssignmentRepository) ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.DonorFamilyAssignment{}).
		Where("donor_id = ? AND status = ?", donorID, models.AssignmentActive).
		Pluck("family_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list donor family ids: %w", err)
	}
	return ids, nil
}

// FamilyIDsForCaseManager returns the ids of families assigned to the case
// manager.
func (r *AssignmentRepository) FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.CaseManagerFamilyAssignment{}).
		Where("case_manager_id = ?", cmID).
		Pluck("family_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list case manager family ids: %w", err)
	}
	return ids, nil
}
