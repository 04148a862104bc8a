package logics

import (
	"context"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// ResourceKind enumerates the guarded resource types. The set is closed: an
// unknown kind is a programming error and denies.
type ResourceKind string

const (
	ResourceFamily        ResourceKind = "family"
	ResourceChild         ResourceKind = "child"
	ResourcePost          ResourceKind = "post"
	ResourceThread        ResourceKind = "thread"
	ResourceUpdateRequest ResourceKind = "update_request"
)

// Action is what the caller wants to do with the resource.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Resource identifies one guarded entity.
type Resource struct {
	Kind ResourceKind
	ID   string
}

// AuthzAssignmentRepository is the slice of the assignment store the guard
// reads.
type AuthzAssignmentRepository interface {
	HasActiveDonorAssignment(ctx context.Context, donorID, familyID string) (bool, error)
	HasCaseManagerAssignment(ctx context.Context, cmID, familyID string) (bool, error)
}

// AuthzContentRepository resolves guarded entities to the family they belong
// to.
type AuthzContentRepository interface {
	GetFamily(ctx context.Context, id string) (*models.Family, error)
	GetChild(ctx context.Context, id string) (*models.Child, error)
}

// AuthzPostRepository reads posts for visibility checks.
type AuthzPostRepository interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
}

// AuthzThreadRepository reads threads for participant checks.
type AuthzThreadRepository interface {
	GetThread(ctx context.Context, id string) (*models.MessageThread, error)
}

// AuthzRequestRepository reads update requests for ownership checks.
type AuthzRequestRepository interface {
	GetRequest(ctx context.Context, id string) (*models.UpdateRequest, error)
}

// AuthzService is the single authorization decision point. Every data access
// in the logics layer runs through CanAccess or Require before any mutation;
// the guard itself never writes.
type AuthzService struct {
	assignments AuthzAssignmentRepository
	families    AuthzContentRepository
	posts       AuthzPostRepository
	threads     AuthzThreadRepository
	requests    AuthzRequestRepository
	logger      *zap.Logger
}

// NewAuthzService returns an AuthzService instance.
func NewAuthzService(
	assignments AuthzAssignmentRepository,
	families AuthzContentRepository,
	posts AuthzPostRepository,
	threads AuthzThreadRepository,
	requests AuthzRequestRepository,
	logger *zap.Logger,
) *AuthzService {
	return &AuthzService{
		assignments: assignments,
		families:    families,
		posts:       posts,
		threads:     threads,
		requests:    requests,
		logger:      logger,
	}
}

// Require is the call-site form of CanAccess: denial comes back as
// ErrForbidden, so callers can one-line the check before acting.
func (s *AuthzService) Require(ctx context.Context, principal models.Principal, resource Resource, action Action) error {
	ok, err := s.CanAccess(ctx, principal, resource, action)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("access denied",
			zap.String("profile_id", principal.ProfileID),
			zap.String("role", string(principal.Role)),
			zap.String("resource_kind", string(resource.Kind)),
			zap.String("resource_id", resource.ID),
			zap.String("action", string(action)),
		)
		return apperrors.ErrForbidden
	}
	return nil
}

// CanAccess decides whether the principal may perform the action on the
// resource. Decisions derive from the live assignment graph on every call;
// nothing is cached, so a revoked edge takes effect immediately.
func (s *AuthzService) CanAccess(ctx context.Context, principal models.Principal, resource Resource, action Action) (bool, error) {
	if !principal.Role.Valid() {
		return false, nil
	}
	if principal.IsAdmin() {
		return true, nil
	}

	switch resource.Kind {
	case ResourceFamily:
		return s.canAccessFamily(ctx, principal, resource.ID, action)
	case ResourceChild:
		child, err := s.families.GetChild(ctx, resource.ID)
		if err != nil {
			return false, err
		}
		return s.canAccessFamily(ctx, principal, child.FamilyID, action)
	case ResourcePost:
		return s.canAccessPost(ctx, principal, resource.ID, action)
	case ResourceThread:
		return s.canAccessThread(ctx, principal, resource.ID, action)
	case ResourceUpdateRequest:
		return s.canAccessUpdateRequest(ctx, principal, resource.ID, action)
	default:
		s.logger.Error("unknown resource kind", zap.String("kind", string(resource.Kind)))
		return false, nil
	}
}

// canAccessFamily evaluates family-scoped access for the non-admin roles.
func (s *AuthzService) canAccessFamily(ctx context.Context, principal models.Principal, familyID string, action Action) (bool, error) {
	switch principal.Role {
	case models.RoleDonor:
		if action != ActionRead {
			return false, nil
		}
		return s.assignments.HasActiveDonorAssignment(ctx, principal.ProfileID, familyID)
	case models.RoleCaseManager:
		return s.assignments.HasCaseManagerAssignment(ctx, principal.ProfileID, familyID)
	case models.RoleFamily:
		family, err := s.families.GetFamily(ctx, familyID)
		if err != nil {
			return false, err
		}
		return family.FamilyUserID != nil && *family.FamilyUserID == principal.ProfileID, nil
	case models.RoleAdmin:
		return true, nil
	default:
		return false, nil
	}
}

// canAccessPost layers visibility and authorship rules on top of family
// access: donors never see hidden posts, and family logins only write posts
// they authored.
func (s *AuthzService) canAccessPost(ctx context.Context, principal models.Principal, postID string, action Action) (bool, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if principal.Role == models.RoleDonor && post.Visibility != models.PostVisible {
		return false, nil
	}
	// A family login edits only the posts it wrote, not a case manager's.
	if principal.Role == models.RoleFamily && action == ActionWrite && post.CreatedByUserID != principal.ProfileID {
		return false, nil
	}
	return s.canAccessFamily(ctx, principal, post.FamilyID, action)
}

// canAccessThread restricts threads to their participants: the donor on the
// thread, the family's portal login, and the family's case managers
// (read-only).
func (s *AuthzService) canAccessThread(ctx context.Context, principal models.Principal, threadID string, action Action) (bool, error) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		return false, err
	}
	switch principal.Role {
	case models.RoleDonor:
		return thread.DonorID == principal.ProfileID, nil
	case models.RoleFamily:
		family, err := s.families.GetFamily(ctx, thread.FamilyID)
		if err != nil {
			return false, err
		}
		return family.FamilyUserID != nil && *family.FamilyUserID == principal.ProfileID, nil
	case models.RoleCaseManager:
		if action != ActionRead {
			return false, nil
		}
		return s.assignments.HasCaseManagerAssignment(ctx, principal.ProfileID, thread.FamilyID)
	case models.RoleAdmin:
		return true, nil
	default:
		return false, nil
	}
}

// canAccessUpdateRequest lets the submitting donor read their request and the
// family's case managers read and handle it.
func (s *AuthzService) canAccessUpdateRequest(ctx context.Context, principal models.Principal, requestID string, action Action) (bool, error) {
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return false, err
	}
	switch principal.Role {
	case models.RoleDonor:
		return req.DonorID == principal.ProfileID && action == ActionRead, nil
	case models.RoleCaseManager:
		return s.assignments.HasCaseManagerAssignment(ctx, principal.ProfileID, req.FamilyID)
	case models.RoleFamily:
		return false, nil
	case models.RoleAdmin:
		return true, nil
	default:
		return false, nil
	}
}
