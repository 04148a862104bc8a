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

// MessageRepository persists threads and their ordered message logs.
type MessageRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMessageRepository creates a new message repository instance
func NewMessageRepository(db *gorm.DB, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: logger}
}

// GetThread retrieves a thread by id.
func (r *MessageRepository) GetThread(ctx context.Context, id string) (*models.MessageThread, error) {
	var thread models.MessageThread
	if err := r.db.WithContext(ctx).First(&thread, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &thread, nil
}

// GetOrCreateThread returns the thread for a donor/family pair, creating it on
// first contact. The insert uses ON CONFLICT DO NOTHING against the composite
// unique index, so two concurrent first messages converge on one thread: the
// loser's insert is a no-op and the follow-up fetch returns the winner's row.
func (r *MessageRepository) GetOrCreateThread(ctx context.Context, donorID, familyID string) (*models.MessageThread, error) {
	thread := models.MessageThread{
		ID:       uuid.NewString(),
		DonorID:  donorID,
		FamilyID: familyID,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "donor_id"}, {Name: "family_id"}},
			DoNothing: true,
		}).
		Create(&thread).Error; err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	var existing models.MessageThread
	if err := r.db.WithContext(ctx).
		First(&existing, "donor_id = ? AND family_id = ?", donorID, familyID).Error; err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &existing, nil
}

// ListThreadsForDonor returns a donor's threads, most recently touched first.
func (r *MessageRepository) ListThreadsForDonor(ctx context.Context, donorID string) ([]models.MessageThread, error) {
	var threads []models.MessageThread
	if err := r.db.WithContext(ctx).Preload("Family").
		Where("donor_id = ?", donorID).
		Order("updated_at DESC").
		Find(&threads).Error; err != nil {
		return nil, fmt.Errorf("failed to list donor threads: %w", err)
	}
	return threads, nil
}

// ListThreadsForFamilies returns the threads of the given families.
func (r *MessageRepository) ListThreadsForFamilies(ctx context.Context, familyIDs []string) ([]models.MessageThread, error) {
	if len(familyIDs) == 0 {
		return []models.MessageThread{}, nil
	}
	var threads []models.MessageThread
	if err := r.db.WithContext(ctx).Preload("Donor").Preload("Family").
		Where("family_id IN ?", familyIDs).
		Order("updated_at DESC").
		Find(&threads).Error; err != nil {
		return nil, fmt.Errorf("failed to list family threads: %w", err)
	}
	return threads, nil
}

// CreateMessage appends a message to a thread and bumps the thread's
// updated_at so recency ordering of thread lists holds.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(&models.MessageThread{}).
			Where("id = ?", msg.ThreadID).
			Update("updated_at", time.Now().UTC()).Error; err != nil {
			return fmt.Errorf("failed to touch thread: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var created models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&created, "id = ?", msg.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve created message: %w", err)
	}
	if created.Sender != nil {
		created.SenderName = created.Sender.Name
	}
	return &created, nil
}

// ListMessages returns the full ordered history of a thread. The (created_at,
// id) ordering makes the log stable even when two rows share a timestamp.
func (r *MessageRepository) ListMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i := range messages {
		if messages[i].Sender != nil {
			messages[i].SenderName = messages[i].Sender.Name
		}
	}
	return messages, nil
}

// MarkRead stamps read_at on every unread message in the thread not sent by
// the reader. A single conditional UPDATE makes the call idempotent: already
// read rows keep their original timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, threadID, readerID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ? AND sender_user_id <> ? AND read_at IS NULL", threadID, readerID).
		Update("read_at", time.Now().UTC())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount counts the unread messages in a thread that the viewer did not
// send.
func (r *MessageRepository) UnreadCount(ctx context.Context, threadID, viewerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ? AND sender_user_id <> ? AND read_at IS NULL", threadID, viewerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// SaveTranslation caches a translated body on the message row. The original
// body column is never touched.
func (r *MessageRepository) SaveTranslation(ctx context.Context, messageID, language, translated string) error {
	var column string
	switch language {
	case "en":
		column = "body_en"
	case "ar":
		column = "body_ar"
	default:
		return fmt.Errorf("unsupported translation language: %s", language)
	}
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", messageID).
		Update(column, translated).Error; err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}
	return nil
}

// GetMessage retrieves a single message.
func (r *MessageRepository) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if msg.Sender != nil {
		msg.SenderName = msg.Sender.Name
	}
	return &msg, nil
}
