package logics

import (
	"context"
	"mime/multipart"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"go.uber.org/zap"
)

// PostRepository is the persistence surface for posts and media rows.
type PostRepository interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListFamilyPosts(ctx context.Context, familyID string, visibleOnly bool) ([]models.Post, error)
	ListFamiliesPosts(ctx context.Context, familyIDs []string, visibleOnly bool) ([]models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, updates models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddMedia(ctx context.Context, media *models.PostMedia) (*models.PostMedia, error)
	GetMedia(ctx context.Context, id string) (*models.PostMedia, error)
	DeleteMedia(ctx context.Context, id string) error
}

// MediaStore uploads and removes post attachments in object storage.
type MediaStore interface {
	Upload(ctx context.Context, postID string, file multipart.File, header *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// PostAssignmentReader supplies the donor feed scoping query.
type PostAssignmentReader interface {
	ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error)
}

// PostService exposes guarded reads and writes over family posts. Donors only
// ever see visible posts; hidden rows are filtered at the query level, not
// after the fact.
type PostService struct {
	posts       PostRepository
	assignments PostAssignmentReader
	authz       *AuthzService
	media       MediaStore
	logger      *zap.Logger
}

// NewPostService returns a PostService instance.
func NewPostService(posts PostRepository, assignments PostAssignmentReader, authz *AuthzService, media MediaStore, logger *zap.Logger) *PostService {
	return &PostService{
		posts:       posts,
		assignments: assignments,
		authz:       authz,
		media:       media,
		logger:      logger,
	}
}

// GetPost returns one post after a guard check; donors asking for a hidden
// post get ErrForbidden from the guard.
func (s *PostService) GetPost(ctx context.Context, principal models.Principal, id string) (*models.Post, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourcePost, ID: id}, ActionRead); err != nil {
		return nil, err
	}
	return s.posts.GetPost(ctx, id)
}

// ListFamilyPosts returns a family's posts scoped to the caller's role.
func (s *PostService) ListFamilyPosts(ctx context.Context, principal models.Principal, familyID string) ([]models.Post, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceFamily, ID: familyID}, ActionRead); err != nil {
		return nil, err
	}
	visibleOnly := principal.Role == models.RoleDonor
	return s.posts.ListFamilyPosts(ctx, familyID, visibleOnly)
}

// DonorFeed returns the visible posts of every family the donor is actively
// assigned to, newest first.
func (s *PostService) DonorFeed(ctx context.Context, principal models.Principal) ([]models.Post, error) {
	if principal.Role != models.RoleDonor {
		return nil, apperrors.ErrForbidden
	}
	familyIDs, err := s.assignments.ActiveFamilyIDsForDonor(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	return s.posts.ListFamiliesPosts(ctx, familyIDs, true)
}

// CreatePost inserts a post under a family the caller can write. The author is
// always the caller.
func (s *PostService) CreatePost(ctx context.Context, principal models.Principal, post *models.Post) (*models.Post, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourceFamily, ID: post.FamilyID}, ActionWrite); err != nil {
		return nil, err
	}
	post.CreatedByUserID = principal.ProfileID
	created, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	s.logger.Info("post created",
		zap.String("post_id", created.ID),
		zap.String("family_id", created.FamilyID),
		zap.String("author_id", principal.ProfileID),
	)
	return created, nil
}

// UpdatePost applies a guarded partial update, including visibility flips.
func (s *PostService) UpdatePost(ctx context.Context, principal models.Principal, id string, updates models.PostUpdate) (*models.Post, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourcePost, ID: id}, ActionWrite); err != nil {
		return nil, err
	}
	return s.posts.UpdatePost(ctx, id, updates)
}

// DeletePost removes a post and its media rows.
func (s *PostService) DeletePost(ctx context.Context, principal models.Principal, id string) error {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourcePost, ID: id}, ActionWrite); err != nil {
		return err
	}
	return s.posts.DeletePost(ctx, id)
}

// AttachMedia uploads a file to S3 and records the resulting public URL as a
// media row on the post.
func (s *PostService) AttachMedia(ctx context.Context, principal models.Principal, postID string, file multipart.File, header *multipart.FileHeader, caption string) (*models.PostMedia, error) {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourcePost, ID: postID}, ActionWrite); err != nil {
		return nil, err
	}
	url, err := s.media.Upload(ctx, postID, file, header)
	if err != nil {
		return nil, err
	}
	return s.posts.AddMedia(ctx, &models.PostMedia{
		PostID:    postID,
		FileURL:   url,
		MediaType: mediaTypeFor(header.Header.Get("Content-Type")),
		Caption:   caption,
	})
}

// DetachMedia removes an attachment from a post: the media row goes first,
// then the stored object. A failed object delete only logs; the row is already
// gone and the orphaned object is harmless.
func (s *PostService) DetachMedia(ctx context.Context, principal models.Principal, postID, mediaID string) error {
	if err := s.authz.Require(ctx, principal, Resource{Kind: ResourcePost, ID: postID}, ActionWrite); err != nil {
		return err
	}
	media, err := s.posts.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if media.PostID != postID {
		return apperrors.ErrReferenceNotFound
	}
	if err := s.posts.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}
	if err := s.media.Delete(ctx, media.FileURL); err != nil {
		s.logger.Warn("failed to remove detached media object",
			zap.String("media_id", mediaID),
			zap.String("file_url", media.FileURL),
			zap.Error(err),
		)
	}
	return nil
}

func mediaTypeFor(contentType string) string {
	switch {
	case contentType == "":
		return "image"
	case len(contentType) >= 5 && contentType[:5] == "video":
		return "video"
	default:
		return "image"
	}
}
