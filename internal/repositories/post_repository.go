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

// PostRepository persists posts and their media attachments.
type PostRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB, logger *zap.Logger) *PostRepository {
	return &PostRepository{db: db, logger: logger}
}

// GetPost retrieves a post with its media and author.
func (r *PostRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Media").Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListFamilyPosts returns a family's posts newest first. When visibleOnly is
// set, hidden posts are filtered out at the query level.
func (r *PostRepository) ListFamilyPosts(ctx context.Context, familyID string, visibleOnly bool) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Preload("Media").Preload("Author").Where("family_id = ?", familyID)
	if visibleOnly {
		query = query.Where("visibility = ?", models.PostVisible)
	}
	var posts []models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list family posts: %w", err)
	}
	return posts, nil
}

// ListFamiliesPosts returns the visible posts of several families, newest
// first. Used for the donor feed across assigned families.
func (r *PostRepository) ListFamiliesPosts(ctx context.Context, familyIDs []string, visibleOnly bool) ([]models.Post, error) {
	if len(familyIDs) == 0 {
		return []models.Post{}, nil
	}
	query := r.db.WithContext(ctx).Preload("Media").Preload("Author").Where("family_id IN ?", familyIDs)
	if visibleOnly {
		query = query.Where("visibility = ?", models.PostVisible)
	}
	var posts []models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// CreatePost inserts a new post.
func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Visibility == "" {
		post.Visibility = models.PostVisible
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Family{}).Where("id = ?", post.FamilyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check family: %w", err)
	}
	if count == 0 {
		return nil, apperrors.ErrReferenceNotFound
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// UpdatePost applies a partial update and returns the fresh row.
func (r *PostRepository) UpdatePost(ctx context.Context, id string, updates models.PostUpdate) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if err := r.db.WithContext(ctx).Preload("Media").Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve updated post: %w", err)
	}
	return &post, nil
}

// DeletePost removes a post; media rows go with it through the FK constraint.
func (r *PostRepository) DeletePost(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}

// AddMedia attaches a media row to an existing post.
func (r *PostRepository) AddMedia(ctx context.Context, media *models.PostMedia) (*models.PostMedia, error) {
	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", media.PostID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if count == 0 {
		return nil, apperrors.ErrReferenceNotFound
	}
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, fmt.Errorf("failed to add post media: %w", err)
	}
	return media, nil
}

// GetMedia fetches a single media row.
func (r *PostRepository) GetMedia(ctx context.Context, id string) (*models.PostMedia, error) {
	var media models.PostMedia
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to get post media: %w", err)
	}
	return &media, nil
}

// DeleteMedia removes a single media attachment.
func (r *PostRepository) DeleteMedia(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PostMedia{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}
