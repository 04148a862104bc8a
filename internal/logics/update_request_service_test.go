package logics_test

import (
	"context"
	"testing"

	"amani-server/internal/apperrors"
	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockUpdateRequestRepository is a mock implementation of UpdateRequestRepository
type MockUpdateRequestRepository struct {
	mock.Mock
}

func (m *MockUpdateRequestRepository) CreateRequest(ctx context.Context, req *models.UpdateRequest) (*models.UpdateRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateRequest), args.Error(1)
}

func (m *MockUpdateRequestRepository) GetRequest(ctx context.Context, id string) (*models.UpdateRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateRequest), args.Error(1)
}

func (m *MockUpdateRequestRepository) ListRequestsForDonor(ctx context.Context, donorID string) ([]models.UpdateRequest, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UpdateRequest), args.Error(1)
}

func (m *MockUpdateRequestRepository) ListRequestsForFamilies(ctx context.Context, familyIDs []string) ([]models.UpdateRequest, error) {
	args := m.Called(ctx, familyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UpdateRequest), args.Error(1)
}

func (m *MockUpdateRequestRepository) ClaimRequest(ctx context.Context, id, cmID string) (*models.UpdateRequest, error) {
	args := m.Called(ctx, id, cmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateRequest), args.Error(1)
}

func (m *MockUpdateRequestRepository) ResolveRequest(ctx context.Context, id, cmID string, respondedPostID *string) (*models.UpdateRequest, error) {
	args := m.Called(ctx, id, cmID, respondedPostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateRequest), args.Error(1)
}

// MockRequestAssignmentReader is a mock implementation of RequestAssignmentReader
type MockRequestAssignmentReader struct {
	mock.Mock
}

func (m *MockRequestAssignmentReader) HasActiveDonorAssignment(ctx context.Context, donorID, familyID string) (bool, error) {
	args := m.Called(ctx, donorID, familyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestAssignmentReader) HasCaseManagerAssignment(ctx context.Context, cmID, familyID string) (bool, error) {
	args := m.Called(ctx, cmID, familyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestAssignmentReader) FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error) {
	args := m.Called(ctx, cmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockRequestPostReader is a mock implementation of RequestPostReader
type MockRequestPostReader struct {
	mock.Mock
}

func (m *MockRequestPostReader) GetPost(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

type updateRequestMocks struct {
	requests    *MockUpdateRequestRepository
	assignments *MockRequestAssignmentReader
	posts       *MockRequestPostReader
}

func newUpdateRequestService() (*logics.UpdateRequestService, updateRequestMocks) {
	m := updateRequestMocks{
		requests:    new(MockUpdateRequestRepository),
		assignments: new(MockRequestAssignmentReader),
		posts:       new(MockRequestPostReader),
	}
	service := logics.NewUpdateRequestService(m.requests, m.assignments, m.posts, zap.NewNop())
	return service, m
}

func TestUpdateRequestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("sponsoring donor files a pending request", func(t *testing.T) {
		service, m := newUpdateRequestService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		created := &models.UpdateRequest{ID: "req-1", DonorID: "donor-1", FamilyID: "family-1", Status: models.RequestPending}
		m.assignments.On("HasActiveDonorAssignment", ctx, "donor-1", "family-1").Return(true, nil)
		m.requests.On("CreateRequest", ctx, mock.MatchedBy(func(req *models.UpdateRequest) bool {
			return req.DonorID == "donor-1" && req.FamilyID == "family-1" && req.RequestText == "any school news?"
		})).Return(created, nil)

		result, err := service.Submit(ctx, donor, "family-1", "  any school news?  ")

		assert.NoError(t, err)
		assert.Equal(t, models.RequestPending, result.Status)
		m.requests.AssertExpectations(t)
	})

	t.Run("donor without active assignment is denied", func(t *testing.T) {
		service, m := newUpdateRequestService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.assignments.On("HasActiveDonorAssignment", ctx, "donor-1", "family-1").Return(false, nil)

		result, err := service.Submit(ctx, donor, "family-1", "any news?")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})

	t.Run("blank request text is rejected", func(t *testing.T) {
		service, m := newUpdateRequestService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}

		result, err := service.Submit(ctx, donor, "family-1", "   ")

		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Nil(t, result)
		m.assignments.AssertNotCalled(t, "HasActiveDonorAssignment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only donors submit", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}

		result, err := service.Submit(ctx, cm, "family-1", "any news?")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})
}

func TestUpdateRequestService_Claim(t *testing.T) {
	ctx := context.Background()
	pending := &models.UpdateRequest{ID: "req-1", DonorID: "donor-1", FamilyID: "family-1", Status: models.RequestPending}

	t.Run("assigned case manager claims a pending request", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		claimed := &models.UpdateRequest{ID: "req-1", FamilyID: "family-1", Status: models.RequestInProgress}
		m.requests.On("GetRequest", ctx, "req-1").Return(pending, nil)
		m.assignments.On("HasCaseManagerAssignment", ctx, "cm-1", "family-1").Return(true, nil)
		m.requests.On("ClaimRequest", ctx, "req-1", "cm-1").Return(claimed, nil)

		result, err := service.Claim(ctx, cm, "req-1")

		assert.NoError(t, err)
		assert.Equal(t, models.RequestInProgress, result.Status)
	})

	t.Run("case manager of another family cannot claim", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-2", Role: models.RoleCaseManager}
		m.requests.On("GetRequest", ctx, "req-1").Return(pending, nil)
		m.assignments.On("HasCaseManagerAssignment", ctx, "cm-2", "family-1").Return(false, nil)

		result, err := service.Claim(ctx, cm, "req-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "ClaimRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second claim loses", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.requests.On("GetRequest", ctx, "req-1").Return(pending, nil)
		m.assignments.On("HasCaseManagerAssignment", ctx, "cm-1", "family-1").Return(true, nil)
		m.requests.On("ClaimRequest", ctx, "req-1", "cm-1").Return(nil, apperrors.ErrInvalidTransition)

		result, err := service.Claim(ctx, cm, "req-1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Nil(t, result)
	})

	t.Run("donor cannot claim", func(t *testing.T) {
		service, m := newUpdateRequestService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}

		result, err := service.Claim(ctx, donor, "req-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "GetRequest", mock.Anything, mock.Anything)
	})
}

func TestUpdateRequestService_Resolve(t *testing.T) {
	ctx := context.Background()
	handlerID := "cm-1"
	inProgress := &models.UpdateRequest{
		ID: "req-1", DonorID: "donor-1", FamilyID: "family-1",
		Status: models.RequestInProgress, HandledByCaseManagerID: &handlerID,
	}

	t.Run("handler resolves with a responding post", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		postID := "post-1"
		completed := &models.UpdateRequest{ID: "req-1", FamilyID: "family-1", Status: models.RequestCompleted, RespondedPostID: &postID}
		m.posts.On("GetPost", ctx, "post-1").Return(&models.Post{ID: "post-1", FamilyID: "family-1"}, nil)
		m.requests.On("GetRequest", ctx, "req-1").Return(inProgress, nil)
		m.requests.On("ResolveRequest", ctx, "req-1", "cm-1", &postID).Return(completed, nil)

		result, err := service.Resolve(ctx, cm, "req-1", &postID)

		assert.NoError(t, err)
		assert.Equal(t, models.RequestCompleted, result.Status)
	})

	t.Run("responding post from another family is rejected", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		postID := "post-2"
		m.posts.On("GetPost", ctx, "post-2").Return(&models.Post{ID: "post-2", FamilyID: "family-2"}, nil)
		m.requests.On("GetRequest", ctx, "req-1").Return(inProgress, nil)

		result, err := service.Resolve(ctx, cm, "req-1", &postID)

		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "ResolveRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("resolving a completed request is rejected", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.requests.On("GetRequest", ctx, "req-1").Return(&models.UpdateRequest{
			ID: "req-1", FamilyID: "family-1", Status: models.RequestCompleted, HandledByCaseManagerID: &handlerID,
		}, nil)
		m.requests.On("ResolveRequest", ctx, "req-1", "cm-1", (*string)(nil)).Return(nil, apperrors.ErrInvalidTransition)

		result, err := service.Resolve(ctx, cm, "req-1", nil)

		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Nil(t, result)
	})

	t.Run("a different case manager cannot resolve a claimed request", func(t *testing.T) {
		service, m := newUpdateRequestService()
		other := models.Principal{ProfileID: "cm-2", Role: models.RoleCaseManager}
		m.requests.On("GetRequest", ctx, "req-1").Return(inProgress, nil)

		result, err := service.Resolve(ctx, other, "req-1", nil)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "ResolveRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateRequestService_Listings(t *testing.T) {
	ctx := context.Background()

	t.Run("donor sees own requests only", func(t *testing.T) {
		service, m := newUpdateRequestService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		m.requests.On("ListRequestsForDonor", ctx, "donor-1").
			Return([]models.UpdateRequest{{ID: "req-1", DonorID: "donor-1"}}, nil)

		result, err := service.ListForDonor(ctx, donor)

		assert.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("case manager sees requests across managed families", func(t *testing.T) {
		service, m := newUpdateRequestService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}
		m.assignments.On("FamilyIDsForCaseManager", ctx, "cm-1").Return([]string{"family-1", "family-2"}, nil)
		m.requests.On("ListRequestsForFamilies", ctx, []string{"family-1", "family-2"}).
			Return([]models.UpdateRequest{{ID: "req-1"}, {ID: "req-2"}}, nil)

		result, err := service.ListForCaseManager(ctx, cm)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("family login cannot use the donor listing", func(t *testing.T) {
		service, m := newUpdateRequestService()
		familyLogin := models.Principal{ProfileID: "family-user-1", Role: models.RoleFamily}

		result, err := service.ListForDonor(ctx, familyLogin)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, result)
		m.requests.AssertNotCalled(t, "ListRequestsForDonor", mock.Anything, mock.Anything)
	})
}
