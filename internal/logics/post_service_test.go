package logics_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"amani-server/internal/apperrors"
	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListFamilyPosts(ctx context.Context, familyID string, visibleOnly bool) ([]models.Post, error) {
	args := m.Called(ctx, familyID, visibleOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListFamiliesPosts(ctx context.Context, familyIDs []string, visibleOnly bool) ([]models.Post, error) {
	args := m.Called(ctx, familyIDs, visibleOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, id string, updates models.PostUpdate) (*models.Post, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) AddMedia(ctx context.Context, media *models.PostMedia) (*models.PostMedia, error) {
	args := m.Called(ctx, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostMedia), args.Error(1)
}

func (m *MockPostRepository) GetMedia(ctx context.Context, id string) (*models.PostMedia, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostMedia), args.Error(1)
}

func (m *MockPostRepository) DeleteMedia(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMediaStore is a mock implementation of MediaStore
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, postID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, postID, file, header)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}

// MockPostAssignmentReader is a mock implementation of PostAssignmentReader
type MockPostAssignmentReader struct {
	mock.Mock
}

func (m *MockPostAssignmentReader) ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type postMocks struct {
	posts       *MockPostRepository
	assignments *MockPostAssignmentReader
	media       *MockMediaStore
	authz       authzMocks
}

func newPostService() (*logics.PostService, postMocks) {
	authz, authzMocks := newAuthzService()
	m := postMocks{
		posts:       new(MockPostRepository),
		assignments: new(MockPostAssignmentReader),
		media:       new(MockMediaStore),
		authz:       authzMocks,
	}
	service := logics.NewPostService(m.posts, m.assignments, authz, m.media, zap.NewNop())
	return service, m
}

func TestPostService_DonorFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("feed spans active families and excludes hidden posts", func(t *testing.T) {
		service, m := newPostService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.assignments.On("ActiveFamilyIDsForDonor", ctx, "donor-1").Return([]string{"family-1", "family-2"}, nil)
		m.posts.On("ListFamiliesPosts", ctx, []string{"family-1", "family-2"}, true).
			Return([]models.Post{{ID: "post-1", FamilyID: "family-1"}}, nil)

		result, err := service.DonorFeed(ctx, donor)

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		m.posts.AssertExpectations(t)
	})

	t.Run("donor with no active assignments gets an empty feed", func(t *testing.T) {
		service, m := newPostService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.assignments.On("ActiveFamilyIDsForDonor", ctx, "donor-1").Return([]string{}, nil)
		m.posts.On("ListFamiliesPosts", ctx, []string{}, true).Return([]models.Post{}, nil)

		result, err := service.DonorFeed(ctx, donor)

		assert.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("feed is donor-only", func(t *testing.T) {
		service, m := newPostService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}

		result, err := service.DonorFeed(ctx, cm)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.posts.AssertNotCalled(t, "ListFamiliesPosts", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostService_ListFamilyPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("donor listing is filtered to visible posts", func(t *testing.T) {
		service, m := newPostService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.authz.assignments.On("HasActiveDonorAssignment", ctx, "donor-1", "family-1").Return(true, nil)
		m.posts.On("ListFamilyPosts", ctx, "family-1", true).Return([]models.Post{{ID: "post-1"}}, nil)

		result, err := service.ListFamilyPosts(ctx, donor, "family-1")

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		m.posts.AssertExpectations(t)
	})

	t.Run("case manager listing includes hidden posts", func(t *testing.T) {
		service, m := newPostService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.authz.assignments.On("HasCaseManagerAssignment", ctx, "cm-1", "family-1").Return(true, nil)
		m.posts.On("ListFamilyPosts", ctx, "family-1", false).
			Return([]models.Post{{ID: "post-1"}, {ID: "post-2", Visibility: models.PostHidden}}, nil)

		result, err := service.ListFamilyPosts(ctx, cm, "family-1")

		assert.NoError(t, err)
		assert.Len(t, result, 2)
	})
}

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("author is always the caller", func(t *testing.T) {
		service, m := newPostService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.authz.assignments.On("HasCaseManagerAssignment", ctx, "cm-1", "family-1").Return(true, nil)
		m.posts.On("CreatePost", ctx, mock.MatchedBy(func(post *models.Post) bool {
			return post.FamilyID == "family-1" && post.CreatedByUserID == "cm-1"
		})).Return(&models.Post{ID: "post-1", FamilyID: "family-1", CreatedByUserID: "cm-1"}, nil)

		result, err := service.CreatePost(ctx, cm, &models.Post{FamilyID: "family-1", Body: "school update", CreatedByUserID: "spoofed"})

		assert.NoError(t, err)
		assert.Equal(t, "cm-1", result.CreatedByUserID)
	})

	t.Run("donors cannot post", func(t *testing.T) {
		service, m := newPostService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}

		result, err := service.CreatePost(ctx, donor, &models.Post{FamilyID: "family-1", Body: "hello"})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
	})
}

func TestPostService_DetachMedia(t *testing.T) {
	ctx := context.Background()

	t.Run("case manager detaches media and the object is removed", func(t *testing.T) {
		service, m := newPostService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.authz.posts.On("GetPost", ctx, "post-1").Return(&models.Post{
			ID: "post-1", FamilyID: "family-1", CreatedByUserID: "cm-1", Visibility: models.PostVisible,
		}, nil)
		m.authz.assignments.On("HasCaseManagerAssignment", ctx, "cm-1", "family-1").Return(true, nil)
		m.posts.On("GetMedia", ctx, "media-1").Return(&models.PostMedia{
			ID: "media-1", PostID: "post-1", FileURL: "https://cdn.example.org/posts/post-1/a.jpg",
		}, nil)
		m.posts.On("DeleteMedia", ctx, "media-1").Return(nil)
		m.media.On("Delete", ctx, "https://cdn.example.org/posts/post-1/a.jpg").Return(nil)

		err := service.DetachMedia(ctx, cm, "post-1", "media-1")

		assert.NoError(t, err)
		m.posts.AssertExpectations(t)
		m.media.AssertExpectations(t)
	})

	t.Run("donor cannot detach media", func(t *testing.T) {
		service, m := newPostService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.authz.posts.On("GetPost", ctx, "post-1").Return(&models.Post{
			ID: "post-1", FamilyID: "family-1", Visibility: models.PostVisible,
		}, nil)
		m.authz.assignments.On("HasActiveDonorAssignment", ctx, "donor-1", "family-1").Return(true, nil)

		err := service.DetachMedia(ctx, donor, "post-1", "media-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		m.posts.AssertNotCalled(t, "DeleteMedia", mock.Anything, mock.Anything)
	})

	t.Run("media belonging to another post reads as missing", func(t *testing.T) {
		service, m := newPostService()
		admin := models.Principal{ProfileID: "admin-1", Role: models.RoleAdmin}
		m.posts.On("GetMedia", ctx, "media-1").Return(&models.PostMedia{
			ID: "media-1", PostID: "post-2", FileURL: "https://cdn.example.org/posts/post-2/b.jpg",
		}, nil)

		err := service.DetachMedia(ctx, admin, "post-1", "media-1")

		assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)
		m.posts.AssertNotCalled(t, "DeleteMedia", mock.Anything, mock.Anything)
		m.media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("storage failure does not undo the detach", func(t *testing.T) {
		service, m := newPostService()
		admin := models.Principal{ProfileID: "admin-1", Role: models.RoleAdmin}
		m.posts.On("GetMedia", ctx, "media-1").Return(&models.PostMedia{
			ID: "media-1", PostID: "post-1", FileURL: "https://cdn.example.org/posts/post-1/a.jpg",
		}, nil)
		m.posts.On("DeleteMedia", ctx, "media-1").Return(nil)
		m.media.On("Delete", ctx, mock.Anything).Return(errors.New("s3 unavailable"))

		err := service.DetachMedia(ctx, admin, "post-1", "media-1")

		assert.NoError(t, err)
	})
}
