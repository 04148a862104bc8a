package logics

import (
	"context"
	"strings"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// UpdateRequestRepository is the persistence surface of the update-request
// workflow.
type UpdateRequestRepository interface {
	CreateRequest(ctx context.Context, req *models.UpdateRequest) (*models.UpdateRequest, error)
	GetRequest(ctx context.Context, id string) (*models.UpdateRequest, error)
	ListRequestsForDonor(ctx context.Context, donorID string) ([]models.UpdateRequest, error)
	ListRequestsForFamilies(ctx context.Context, familyIDs []string) ([]models.UpdateRequest, error)
	ClaimRequest(ctx context.Context, id, cmID string) (*models.UpdateRequest, error)
	ResolveRequest(ctx context.Context, id, cmID string, respondedPostID *string) (*models.UpdateRequest, error)
}

// RequestAssignmentReader checks the edges that gate submission and handling.
type RequestAssignmentReader interface {
	HasActiveDonorAssignment(ctx context.Context, donorID, familyID string) (bool, error)
	HasCaseManagerAssignment(ctx context.Context, cmID, familyID string) (bool, error)
	FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error)
}

// RequestPostReader verifies the responding post on resolution.
type RequestPostReader interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
}

// UpdateRequestService runs the pending → in_progress → completed workflow.
// The status only ever moves forward; concurrent claims are settled by a
// conditional update in the store, not by locks here.
type UpdateRequestService struct {
	requests    UpdateRequestRepository
	assignments RequestAssignmentReader
	posts       RequestPostReader
	logger      *zap.Logger
}

// NewUpdateRequestService returns an UpdateRequestService instance.
func NewUpdateRequestService(
	requests UpdateRequestRepository,
	assignments RequestAssignmentReader,
	posts RequestPostReader,
	logger *zap.Logger,
) *UpdateRequestService {
	return &UpdateRequestService{
		requests:    requests,
		assignments: assignments,
		posts:       posts,
		logger:      logger,
	}
}

// Submit files a new pending request. Only a donor with an active assignment
// to the family may ask for news about it.
func (s *UpdateRequestService) Submit(ctx context.Context, principal models.Principal, familyID, text string) (*models.UpdateRequest, error) {
	if principal.Role != models.RoleDonor {
		return nil, apperrors.ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &apperrors.ValidationError{Field: "request_text", Message: "must not be empty"}
	}
	active, err := s.assignments.HasActiveDonorAssignment(ctx, principal.ProfileID, familyID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperrors.ErrForbidden
	}

	req, err := s.requests.CreateRequest(ctx, &models.UpdateRequest{
		DonorID:     principal.ProfileID,
		FamilyID:    familyID,
		RequestText: text,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("update request submitted",
		zap.String("request_id", req.ID),
		zap.String("donor_id", principal.ProfileID),
		zap.String("family_id", familyID),
	)
	return req, nil
}

// Claim moves a pending request to in_progress and records the caller as its
// handler. A request that is already claimed or completed comes back as
// ErrInvalidTransition.
func (s *UpdateRequestService) Claim(ctx context.Context, principal models.Principal, requestID string) (*models.UpdateRequest, error) {
	if principal.Role != models.RoleCaseManager && !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if principal.Role == models.RoleCaseManager {
		assigned, err := s.assignments.HasCaseManagerAssignment(ctx, principal.ProfileID, req.FamilyID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, apperrors.ErrForbidden
		}
	}
	return s.requests.ClaimRequest(ctx, requestID, principal.ProfileID)
}

// Resolve completes an in_progress request, optionally linking the post that
// answered it. Only the claiming handler may resolve; a different case manager
// gets ErrForbidden, and resolving twice is rejected as an invalid transition.
func (s *UpdateRequestService) Resolve(ctx context.Context, principal models.Principal, requestID string, respondedPostID *string) (*models.UpdateRequest, error) {
	if principal.Role != models.RoleCaseManager && !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestInProgress &&
		(req.HandledByCaseManagerID == nil || *req.HandledByCaseManagerID != principal.ProfileID) {
		return nil, apperrors.ErrForbidden
	}
	if respondedPostID != nil {
		post, err := s.posts.GetPost(ctx, *respondedPostID)
		if err != nil {
			return nil, err
		}
		if post.FamilyID != req.FamilyID {
			return nil, &apperrors.ValidationError{Field: "responded_post_id", Message: "post belongs to a different family"}
		}
	}
	return s.requests.ResolveRequest(ctx, requestID, principal.ProfileID, respondedPostID)
}

// ListForDonor returns a donor's own requests, newest first.
func (s *UpdateRequestService) ListForDonor(ctx context.Context, principal models.Principal) ([]models.UpdateRequest, error) {
	if principal.Role != models.RoleDonor {
		return nil, apperrors.ErrForbidden
	}
	return s.requests.ListRequestsForDonor(ctx, principal.ProfileID)
}

// ListForCaseManager returns the open and handled requests across the
// caller's managed families.
func (s *UpdateRequestService) ListForCaseManager(ctx context.Context, principal models.Principal) ([]models.UpdateRequest, error) {
	if principal.Role != models.RoleCaseManager {
		return nil, apperrors.ErrForbidden
	}
	familyIDs, err := s.assignments.FamilyIDsForCaseManager(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	return s.requests.ListRequestsForFamilies(ctx, familyIDs)
}
