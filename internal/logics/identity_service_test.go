package logics_test

import (
	"context"
	"errors"
	"testing"

	"amani-server/internal/apperrors"
	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockIdentityRepository is a mock implementation of IdentityRepository
type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockIdentityRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockIdentityRepository) UpdateProfile(ctx context.Context, id string, updates models.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockIdentityRepository) DonorProfileByUserID(ctx context.Context, userID string) (*models.DonorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DonorProfile), args.Error(1)
}

func (m *MockIdentityRepository) CaseManagerProfileByUserID(ctx context.Context, userID string) (*models.CaseManagerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CaseManagerProfile), args.Error(1)
}

func newIdentityService() (*logics.IdentityService, *MockIdentityRepository) {
	profiles := new(MockIdentityRepository)
	service := logics.NewIdentityService(profiles, zap.NewNop())
	return service, profiles
}

func TestIdentityService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("known profile resolves to a principal", func(t *testing.T) {
		service, profiles := newIdentityService()
		profiles.On("GetProfile", ctx, "user-1").
			Return(&models.Profile{ID: "user-1", Role: models.RoleDonor}, nil)

		principal, err := service.Resolve(ctx, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", principal.ProfileID)
		assert.Equal(t, models.RoleDonor, principal.Role)
	})

	t.Run("empty user id fails closed", func(t *testing.T) {
		service, profiles := newIdentityService()

		principal, err := service.Resolve(ctx, "")

		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Nil(t, principal)
		profiles.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("unknown profile fails closed", func(t *testing.T) {
		service, profiles := newIdentityService()
		profiles.On("GetProfile", ctx, "ghost").Return(nil, apperrors.ErrReferenceNotFound)

		principal, err := service.Resolve(ctx, "ghost")

		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Nil(t, principal)
	})

	t.Run("profile with unknown role fails closed", func(t *testing.T) {
		service, profiles := newIdentityService()
		profiles.On("GetProfile", ctx, "user-1").
			Return(&models.Profile{ID: "user-1", Role: models.Role("superuser")}, nil)

		principal, err := service.Resolve(ctx, "user-1")

		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Nil(t, principal)
	})

	t.Run("store failure surfaces as-is", func(t *testing.T) {
		service, profiles := newIdentityService()
		storeErr := errors.New("connection refused")
		profiles.On("GetProfile", ctx, "user-1").Return(nil, storeErr)

		principal, err := service.Resolve(ctx, "user-1")

		assert.ErrorIs(t, err, storeErr)
		assert.Nil(t, principal)
	})
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("caller updates own profile only", func(t *testing.T) {
		service, profiles := newIdentityService()
		donor := models.Principal{ProfileID: "user-1", Role: models.RoleDonor}
		newName := "New Name"
		updates := models.ProfileUpdate{Name: &newName}
		profiles.On("UpdateProfile", ctx, "user-1", updates).
			Return(&models.Profile{ID: "user-1", Name: newName, Role: models.RoleDonor}, nil)

		result, err := service.UpdateProfile(ctx, donor, updates)

		assert.NoError(t, err)
		assert.Equal(t, newName, result.Name)
		profiles.AssertExpectations(t)
	})
}
