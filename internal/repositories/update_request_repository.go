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

// UpdateRequestRepository persists donor update requests and their
// forward-only status transitions.
type UpdateRequestRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUpdateRequestRepository creates a new update request repository instance
func NewUpdateRequestRepository(db *gorm.DB, logger *zap.Logger) *UpdateRequestRepository {
	return &UpdateRequestRepository{db: db, logger: logger}
}

// CreateRequest inserts a new pending request.
func (r *UpdateRequestRepository) CreateRequest(ctx context.Context, req *models.UpdateRequest) (*models.UpdateRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.RequestPending
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create update request: %w", err)
	}
	return req, nil
}

// GetRequest retrieves a request by id.
func (r *UpdateRequestRepository) GetRequest(ctx context.Context, id string) (*models.UpdateRequest, error) {
	var req models.UpdateRequest
	if err := r.db.WithContext(ctx).Preload("Donor").Preload("Family").First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get update request: %w", err)
	}
	return &req, nil
}

// ListRequestsForDonor returns a donor's requests, newest first.
func (r *UpdateRequestRepository) ListRequestsForDonor(ctx context.Context, donorID string) ([]models.UpdateRequest, error) {
	var reqs []models.UpdateRequest
	if err := r.db.WithContext(ctx).Preload("Family").
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list donor update requests: %w", err)
	}
	return reqs, nil
}

// ListRequestsForFamilies returns the requests against the given families.
func (r *UpdateRequestRepository) ListRequestsForFamilies(ctx context.Context, familyIDs []string) ([]models.UpdateRequest, error) {
	if len(familyIDs) == 0 {
		return []models.UpdateRequest{}, nil
	}
	var reqs []models.UpdateRequest
	if err := r.db.WithContext(ctx).Preload("Donor").Preload("Family").
		Where("family_id IN ?", familyIDs).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list family update requests: %w", err)
	}
	return reqs, nil
}

// ClaimRequest moves a pending request to in_progress for the given case
// manager. The conditional UPDATE is the race arbiter: of two concurrent
// claims only one matches the pending row, the other gets zero rows and an
// invalid-transition error.
func (r *UpdateRequestRepository) ClaimRequest(ctx context.Context, id, cmID string) (*models.UpdateRequest, error) {
	result := r.db.WithContext(ctx).Model(&models.UpdateRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]interface{}{
			"status":                     models.RequestInProgress,
			"handled_by_case_manager_id": cmID,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim update request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.transitionFailure(ctx, id)
	}
	return r.GetRequest(ctx, id)
}

// ResolveRequest moves an in_progress request to completed, recording the post
// that answered it. Only the claiming case manager's in_progress row matches.
func (r *UpdateRequestRepository) ResolveRequest(ctx context.Context, id, cmID string, respondedPostID *string) (*models.UpdateRequest, error) {
	result := r.db.WithContext(ctx).Model(&models.UpdateRequest{}).
		Where("id = ? AND status = ? AND handled_by_case_manager_id = ?", id, models.RequestInProgress, cmID).
		Updates(map[string]interface{}{
			"status":            models.RequestCompleted,
			"responded_post_id": respondedPostID,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to resolve update request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.resolveFailure(ctx, id, cmID)
	}
	return r.GetRequest(ctx, id)
}

// resolveFailure explains a zero-row resolve. A row that is in_progress under
// another case manager is an authorization failure on the caller, not an
// invalid state of the request.
func (r *UpdateRequestRepository) resolveFailure(ctx context.Context, id, cmID string) (*models.UpdateRequest, error) {
	req, err := r.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestInProgress &&
		(req.HandledByCaseManagerID == nil || *req.HandledByCaseManagerID != cmID) {
		return nil, apperrors.ErrForbidden
	}
	return nil, apperrors.ErrInvalidTransition
}

// transitionFailure distinguishes a missing row from a row in the wrong state
// after a zero-row conditional update.
func (r *UpdateRequestRepository) transitionFailure(ctx context.Context, id string) (*models.UpdateRequest, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UpdateRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check update request: %w", err)
	}
	if count == 0 {
		return nil, apperrors.ErrReferenceNotFound
	}
	return nil, apperrors.ErrInvalidTransition
}
