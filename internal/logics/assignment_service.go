package logics

import (
	"context"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// AssignmentRepository is the persistence surface of the assignment graph.
type AssignmentRepository interface {
	CreateDonorAssignment(ctx context.Context, donorID, familyID string) (*models.DonorFamilyAssignment, error)
	CreateCaseManagerAssignment(ctx context.Context, cmID, familyID string) (*models.CaseManagerFamilyAssignment, error)
	GetDonorAssignment(ctx context.Context, id string) (*models.DonorFamilyAssignment, error)
	UpdateDonorAssignmentStatus(ctx context.Context, id string, status models.AssignmentStatus) (*models.DonorFamilyAssignment, error)
	DeleteDonorAssignment(ctx context.Context, id string) error
	DeleteCaseManagerAssignment(ctx context.Context, id string) error
	ListDonorAssignments(ctx context.Context, donorID string) ([]models.DonorFamilyAssignment, error)
	ListFamilyDonorAssignments(ctx context.Context, familyID string) ([]models.DonorFamilyAssignment, error)
	ListCaseManagerAssignments(ctx context.Context, cmID string) ([]models.CaseManagerFamilyAssignment, error)
	ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error)
	FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error)
}

// AssignmentProfileRepository verifies that assignment endpoints exist and
// carry the right role.
type AssignmentProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// AssignmentFamilyRepository verifies family references.
type AssignmentFamilyRepository interface {
	GetFamily(ctx context.Context, id string) (*models.Family, error)
	ListFamiliesByIDs(ctx context.Context, ids []string) ([]models.Family, error)
}

// AssignmentService manages the donor↔family and case-manager↔family edges the
// authorization guard reads. All mutations are admin-only.
type AssignmentService struct {
	assignments AssignmentRepository
	profiles    AssignmentProfileRepository
	families    AssignmentFamilyRepository
	logger      *zap.Logger
}

// NewAssignmentService returns an AssignmentService instance.
func NewAssignmentService(
	assignments AssignmentRepository,
	profiles AssignmentProfileRepository,
	families AssignmentFamilyRepository,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		profiles:    profiles,
		families:    families,
		logger:      logger,
	}
}

// AssignDonor creates an active donor↔family edge. Both endpoints are verified
// before the insert; a second active edge for the same pair is rejected with
// ErrDuplicateActiveAssignment.
func (s *AssignmentService) AssignDonor(ctx context.Context, principal models.Principal, donorID, familyID string) (*models.DonorFamilyAssignment, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	donor, err := s.profiles.GetProfile(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if donor.Role != models.RoleDonor {
		return nil, apperrors.ErrReferenceNotFound
	}
	if _, err := s.families.GetFamily(ctx, familyID); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.CreateDonorAssignment(ctx, donorID, familyID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("donor assigned to family",
		zap.String("assignment_id", assignment.ID),
		zap.String("donor_id", donorID),
		zap.String("family_id", familyID),
	)
	return assignment, nil
}

// AssignCaseManager creates a case-manager↔family edge with the same
// existence and duplicate contract as AssignDonor.
func (s *AssignmentService) AssignCaseManager(ctx context.Context, principal models.Principal, cmID, familyID string) (*models.CaseManagerFamilyAssignment, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	cm, err := s.profiles.GetProfile(ctx, cmID)
	if err != nil {
		return nil, err
	}
	if cm.Role != models.RoleCaseManager {
		return nil, apperrors.ErrReferenceNotFound
	}
	if _, err := s.families.GetFamily(ctx, familyID); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.CreateCaseManagerAssignment(ctx, cmID, familyID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("case manager assigned to family",
		zap.String("assignment_id", assignment.ID),
		zap.String("case_manager_id", cmID),
		zap.String("family_id", familyID),
	)
	return assignment, nil
}

// EndDonorAssignment transitions the edge to ended and stamps end_date. Ended
// edges stay in the history; they never grant access again.
func (s *AssignmentService) EndDonorAssignment(ctx context.Context, principal models.Principal, id string) (*models.DonorFamilyAssignment, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.UpdateDonorAssignmentStatus(ctx, id, models.AssignmentEnded)
}

// PauseDonorAssignment suspends the edge without ending it. A paused edge
// grants no access.
func (s *AssignmentService) PauseDonorAssignment(ctx context.Context, principal models.Principal, id string) (*models.DonorFamilyAssignment, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.UpdateDonorAssignmentStatus(ctx, id, models.AssignmentPaused)
}

// ResumeDonorAssignment reactivates a paused edge. The duplicate-active
// invariant still holds through the store's partial unique index.
func (s *AssignmentService) ResumeDonorAssignment(ctx context.Context, principal models.Principal, id string) (*models.DonorFamilyAssignment, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.UpdateDonorAssignmentStatus(ctx, id, models.AssignmentActive)
}

// RemoveDonorAssignment deletes a donor edge outright. Unlike ending, removal
// leaves no history; it exists for edges created by mistake.
func (s *AssignmentService) RemoveDonorAssignment(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return s.assignments.DeleteDonorAssignment(ctx, id)
}

// RemoveCaseManagerAssignment deletes the edge, revoking the case manager's
// access to the family on the next guard evaluation.
func (s *AssignmentService) RemoveCaseManagerAssignment(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return s.assignments.DeleteCaseManagerAssignment(ctx, id)
}

// FamiliesForDonor lists a donor's assignments. Donors may only list their
// own; admins may list anyone's.
func (s *AssignmentService) FamiliesForDonor(ctx context.Context, principal models.Principal, donorID string) ([]models.DonorFamilyAssignment, error) {
	if !principal.IsAdmin() && principal.ProfileID != donorID {
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.ListDonorAssignments(ctx, donorID)
}

// FamiliesForCaseManager lists a case manager's assignments.
func (s *AssignmentService) FamiliesForCaseManager(ctx context.Context, principal models.Principal, cmID string) ([]models.CaseManagerFamilyAssignment, error) {
	if !principal.IsAdmin() && principal.ProfileID != cmID {
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.ListCaseManagerAssignments(ctx, cmID)
}

// DonorsForFamily lists the donor edges of a family. Case managers may list
// donors only for families they manage.
func (s *AssignmentService) DonorsForFamily(ctx context.Context, principal models.Principal, familyID string) ([]models.DonorFamilyAssignment, error) {
	switch principal.Role {
	case models.RoleAdmin:
	case models.RoleCaseManager:
		ids, err := s.assignments.FamilyIDsForCaseManager(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		if !containsID(ids, familyID) {
			return nil, apperrors.ErrForbidden
		}
	default:
		return nil, apperrors.ErrForbidden
	}
	return s.assignments.ListFamilyDonorAssignments(ctx, familyID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
