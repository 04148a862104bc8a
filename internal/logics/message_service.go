package logics

import (
	"context"
	"strings"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"
	"amani-server/internal/realtime"

	"go.uber.org/zap"
)

// MessageRepository is the persistence surface of the messaging engine.
type MessageRepository interface {
	GetThread(ctx context.Context, id string) (*models.MessageThread, error)
	GetOrCreateThread(ctx context.Context, donorID, familyID string) (*models.MessageThread, error)
	ListThreadsForDonor(ctx context.Context, donorID string) ([]models.MessageThread, error)
	ListThreadsForFamilies(ctx context.Context, familyIDs []string) ([]models.MessageThread, error)
	CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, threadID string) ([]models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	MarkRead(ctx context.Context, threadID, readerID string) (int64, error)
	UnreadCount(ctx context.Context, threadID, viewerID string) (int64, error)
}

// MessageAssignmentReader checks the donor edge before first contact.
type MessageAssignmentReader interface {
	HasActiveDonorAssignment(ctx context.Context, donorID, familyID string) (bool, error)
}

// MessageFamilyReader resolves a family login to its family row.
type MessageFamilyReader interface {
	GetFamily(ctx context.Context, id string) (*models.Family, error)
	GetFamilyByUserID(ctx context.Context, userID string) (*models.Family, error)
}

// MessageProfileReader verifies the donor endpoint of an admin-opened thread.
type MessageProfileReader interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// MessageService runs the donor↔family conversations: one thread per pair,
// append-only ordered log, unread tracking, realtime fan-out.
type MessageService struct {
	messages    MessageRepository
	assignments MessageAssignmentReader
	families    MessageFamilyReader
	profiles    MessageProfileReader
	authz       *AuthzService
	broker      realtime.Broker
	logger      *zap.Logger
}

// NewMessageService returns a MessageService instance.
func NewMessageService(
	messages MessageRepository,
	assignments MessageAssignmentReader,
	families MessageFamilyReader,
	profiles MessageProfileReader,
	authz *AuthzService,
	broker realtime.Broker,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messages:    messages,
		assignments: assignments,
		families:    families,
		profiles:    profiles,
		authz:       authz,
		broker:      broker,
		logger:      logger,
	}
}

// GetOrCreateThread returns the single thread for the donor/family pair,
// creating it on first contact. Creation is an atomic insert-if-absent in the
// store, so two racing calls both land on the same thread.
func (s *MessageService) GetOrCreateThread(ctx context.Context, principal models.Principal, donorID, familyID string) (*models.MessageThread, error) {
	switch principal.Role {
	case models.RoleAdmin:
		// Admins name both endpoints; verify them so a typoed id comes back
		// as not-found instead of a constraint violation from the insert.
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
	case models.RoleDonor:
		if donorID != principal.ProfileID {
			return nil, apperrors.ErrForbidden
		}
		active, err := s.assignments.HasActiveDonorAssignment(ctx, donorID, familyID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, apperrors.ErrForbidden
		}
	case models.RoleFamily:
		family, err := s.families.GetFamily(ctx, familyID)
		if err != nil {
			return nil, err
		}
		if family.FamilyUserID == nil || *family.FamilyUserID != principal.ProfileID {
			return nil, apperrors.ErrForbidden
		}
	default:
		return nil, apperrors.ErrForbidden
	}
	return s.messages.GetOrCreateThread(ctx, donorID, familyID)
}

// ListThreads returns the caller's conversations, most recently touched first.
func (s *MessageService) ListThreads(ctx context.Context, principal models.Principal) ([]models.MessageThread, error) {
	switch principal.Role {
	case models.RoleDonor:
		return s.messages.ListThreadsForDonor(ctx, principal.ProfileID)
	case models.RoleFamily:
		family, err := s.families.GetFamilyByUserID(ctx, principal.ProfileID)
		if err != nil {
			return nil, err
		}
		return s.messages.ListThreadsForFamilies(ctx, []string{family.ID})
	default:
		return nil, apperrors.ErrForbidden
	}
}

// SendMessage appends to the thread log with a server-assigned timestamp and
// publishes the stored row to the thread's realtime channel. A failed publish
// is logged and swallowed: the message is durable, subscribers catch up from
// the history.
func (s *MessageService) SendMessage(ctx context.Context, principal models.Principal, threadID, body, originalLanguage string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &apperrors.ValidationError{Field: "body", Message: "must not be empty"}
	}
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: threadID}, ActionWrite); err != nil {
		return nil, err
	}

	msg, err := s.messages.CreateMessage(ctx, &models.Message{
		ThreadID:         threadID,
		SenderUserID:     principal.ProfileID,
		Body:             body,
		OriginalLanguage: originalLanguage,
	})
	if err != nil {
		return nil, err
	}

	if err := s.broker.Publish(ctx, threadID, msg); err != nil {
		s.logger.Warn("failed to publish message to realtime channel",
			zap.String("thread_id", threadID),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}
	return msg, nil
}

// ListMessages returns the thread's full history in insertion order.
func (s *MessageService) ListMessages(ctx context.Context, principal models.Principal, threadID string) ([]models.Message, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: threadID}, ActionRead); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, threadID)
}

// GetMessage returns a single message after guarding its thread.
func (s *MessageService) GetMessage(ctx context.Context, principal models.Principal, messageID string) (*models.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: msg.ThreadID}, ActionRead); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead stamps every unread message in the thread not sent by the caller.
// Safe to call repeatedly.
func (s *MessageService) MarkRead(ctx context.Context, principal models.Principal, threadID string) (int64, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: threadID}, ActionRead); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(ctx, threadID, principal.ProfileID)
}

// UnreadCount reports how many messages in the thread the caller has not read.
func (s *MessageService) UnreadCount(ctx context.Context, principal models.Principal, threadID string) (int64, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: threadID}, ActionRead); err != nil {
		return 0, err
	}
	return s.messages.UnreadCount(ctx, threadID, principal.ProfileID)
}

// SubscribeThread registers fn for every message published to the thread after
// the call. Cancel on the returned subscription blocks until delivery has
// stopped for good.
func (s *MessageService) SubscribeThread(ctx context.Context, principal models.Principal, threadID string, fn realtime.Handler) (*realtime.Subscription, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceThread, ID: threadID}, ActionRead); err != nil {
		return nil, err
	}
	return s.broker.SubscribeThread(ctx, threadID, fn)
}
