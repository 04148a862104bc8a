package logics

import (
	"context"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// FamilyRepository is the persistence surface for families and children.
type FamilyRepository interface {
	GetFamily(ctx context.Context, id string) (*models.Family, error)
	GetFamilyByUserID(ctx context.Context, userID string) (*models.Family, error)
	ListFamilies(ctx context.Context, status *models.FamilyStatus) ([]models.Family, error)
	ListFamiliesByIDs(ctx context.Context, ids []string) ([]models.Family, error)
	CreateFamily(ctx context.Context, family *models.Family) (*models.Family, error)
	UpdateFamily(ctx context.Context, id string, updates models.FamilyUpdate) (*models.Family, error)
	DeleteFamily(ctx context.Context, id string) error
	GetChild(ctx context.Context, id string) (*models.Child, error)
	CreateChild(ctx context.Context, child *models.Child) (*models.Child, error)
	UpdateChild(ctx context.Context, id string, updates models.ChildUpdate) (*models.Child, error)
	DeleteChild(ctx context.Context, id string) error
}

// FamilyAssignmentReader supplies the scoping queries for role-filtered lists.
type FamilyAssignmentReader interface {
	ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error)
	FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error)
}

// FamilyService exposes role-scoped reads and guarded writes over families and
// their children.
type FamilyService struct {
	families    FamilyRepository
	assignments FamilyAssignmentReader
	authz       *AuthzService
	logger      *zap.Logger
}

// NewFamilyService returns a FamilyService instance.
func NewFamilyService(families FamilyRepository, assignments FamilyAssignmentReader, authz *AuthzService, logger *zap.Logger) *FamilyService {
	return &FamilyService{
		families:    families,
		assignments: assignments,
		authz:       authz,
		logger:      logger,
	}
}

// GetFamily returns one family after a fresh guard check. The assignment graph
// is consulted on every call, so access revoked since the caller's last read
// denies here.
func (s *FamilyService) GetFamily(ctx context.Context, principal models.Principal, id string) (*models.Family, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceFamily, ID: id}, ActionRead); err != nil {
		return nil, err
	}
	return s.families.GetFamily(ctx, id)
}

// ListFamilies returns the families visible to the caller: all of them for
// admins, assigned ones for donors and case managers, and the caller's own
// family for a family login.
func (s *FamilyService) ListFamilies(ctx context.Context, principal models.Principal, status *models.FamilyStatus) ([]models.Family, error) {
	switch principal.Role {
	case models.RoleAdmin:
		return s.families.ListFamilies(ctx, status)
	case models.RoleDonor:
		ids, err := s.assignments.ActiveFamilyIDsForDonor(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		return s.families.ListFamiliesByIDs(ctx, ids)
	case models.RoleCaseManager:
		ids, err := s.assignments.FamilyIDsForCaseManager(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		return s.families.ListFamiliesByIDs(ctx, ids)
	case models.RoleFamily:
		family, err := s.families.GetFamilyByUserID(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		return []models.Family{*family}, nil
	default:
		return nil, apperrors.ErrForbidden
	}
}

// CreateFamily inserts a new family. Admin only; case managers get write
// access to a family only after an assignment edge exists.
func (s *FamilyService) CreateFamily(ctx context.Context, principal models.Principal, family *models.Family) (*models.Family, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	created, err := s.families.CreateFamily(ctx, family)
	if err != nil {
		return nil, err
	}
	s.logger.Info("family created", zap.String("family_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateFamily applies a guarded partial update.
func (s *FamilyService) UpdateFamily(ctx context.Context, principal models.Principal, id string, updates models.FamilyUpdate) (*models.Family, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceFamily, ID: id}, ActionWrite); err != nil {
		return nil, err
	}
	return s.families.UpdateFamily(ctx, id, updates)
}

// DeleteFamily removes a family and everything hanging off it. Only an admin
// can do this; families and case managers retire a family by flipping its
// status instead.
func (s *FamilyService) DeleteFamily(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if err := s.families.DeleteFamily(ctx, id); err != nil {
		return err
	}
	s.logger.Info("family deleted", zap.String("family_id", id))
	return nil
}

// GetChild returns one child after a guard check against its family.
func (s *FamilyService) GetChild(ctx context.Context, principal models.Principal, id string) (*models.Child, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceChild, ID: id}, ActionRead); err != nil {
		return nil, err
	}
	return s.families.GetChild(ctx, id)
}

// CreateChild inserts a child under a family the caller can write.
func (s *FamilyService) CreateChild(ctx context.Context, principal models.Principal, child *models.Child) (*models.Child, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceFamily, ID: child.FamilyID}, ActionWrite); err != nil {
		return nil, err
	}
	return s.families.CreateChild(ctx, child)
}

// UpdateChild applies a guarded partial update to a child.
func (s *FamilyService) UpdateChild(ctx context.Context, principal models.Principal, id string, updates models.ChildUpdate) (*models.Child, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceChild, ID: id}, ActionWrite); err != nil {
		return nil, err
	}
	return s.families.UpdateChild(ctx, id, updates)
}

// DeleteChild removes a child from a family the caller can write.
func (s *FamilyService) DeleteChild(ctx context.Context, principal models.Principal, id string) error {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceChild, ID: id}, ActionWrite); err != nil {
		return err
	}
	return s.families.DeleteChild(ctx, id)
}
