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

// MockFamilyRepository is a mock implementation of FamilyRepository
type MockFamilyRepository struct {
	mock.Mock
}

func (m *MockFamilyRepository) GetFamily(ctx context.Context, id string) (*models.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) GetFamilyByUserID(ctx context.Context, userID string) (*models.Family, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) ListFamilies(ctx context.Context, status *models.FamilyStatus) ([]models.Family, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Family), args.Error(1)
}

func (m *MockFamilyRepository) ListFamiliesByIDs(ctx context.Context, ids []string) ([]models.Family, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Family), args.Error(1)
}

func (m *MockFamilyRepository) CreateFamily(ctx context.Context, family *models.Family) (*models.Family, error) {
	args := m.Called(ctx, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) UpdateFamily(ctx context.Context, id string, updates models.FamilyUpdate) (*models.Family, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) DeleteFamily(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFamilyRepository) GetChild(ctx context.Context, id string) (*models.Child, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

func (m *MockFamilyRepository) CreateChild(ctx context.Context, child *models.Child) (*models.Child, error) {
	args := m.Called(ctx, child)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

func (m *MockFamilyRepository) UpdateChild(ctx context.Context, id string, updates models.ChildUpdate) (*models.Child, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

func (m *MockFamilyRepository) DeleteChild(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFamilyScopeReader is a mock implementation of FamilyAssignmentReader
type MockFamilyScopeReader struct {
	mock.Mock
}

func (m *MockFamilyScopeReader) ActiveFamilyIDsForDonor(ctx context.Context, donorID string) ([]string, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFamilyScopeReader) FamilyIDsForCaseManager(ctx context.Context, cmID string) ([]string, error) {
	args := m.Called(ctx, cmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newFamilyService() (*logics.FamilyService, *MockFamilyRepository, *MockFamilyScopeReader, authzMocks) {
	families := new(MockFamilyRepository)
	scope := new(MockFamilyScopeReader)
	authz, am := newAuthzService()
	service := logics.NewFamilyService(families, scope, authz, zap.NewNop())
	return service, families, scope, am
}

func TestFamilyService_DeleteFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes a family", func(t *testing.T) {
		service, families, _, _ := newFamilyService()
		admin := models.Principal{ProfileID: "admin-1", Role: models.RoleAdmin}
		families.On("DeleteFamily", ctx, "family-1").Return(nil)

		err := service.DeleteFamily(ctx, admin, "family-1")

		assert.NoError(t, err)
		families.AssertExpectations(t)
	})

	t.Run("case manager cannot delete a family", func(t *testing.T) {
		service, families, _, _ := newFamilyService()
		cm := models.Principal{ProfileID: "cm-1", Role: models.RoleCaseManager}

		err := service.DeleteFamily(ctx, cm, "family-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		families.AssertNotCalled(t, "DeleteFamily", mock.Anything, mock.Anything)
	})

	t.Run("family login cannot delete its own row", func(t *testing.T) {
		service, families, _, _ := newFamilyService()
		fam := models.Principal{ProfileID: "family-user-1", Role: models.RoleFamily}

		err := service.DeleteFamily(ctx, fam, "family-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		families.AssertNotCalled(t, "DeleteFamily", mock.Anything, mock.Anything)
	})

	t.Run("missing family surfaces as not found", func(t *testing.T) {
		service, families, _, _ := newFamilyService()
		admin := models.Principal{ProfileID: "admin-1", Role: models.RoleAdmin}
		families.On("DeleteFamily", ctx, "family-x").Return(apperrors.ErrReferenceNotFound)

		err := service.DeleteFamily(ctx, admin, "family-x")

		assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)
	})
}

func TestFamilyService_UpdateFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("family login updates its own story", func(t *testing.T) {
		service, families, _, am := newFamilyService()
		userID := "family-user-1"
		fam := models.Principal{ProfileID: userID, Role: models.RoleFamily}
		story := "We planted a garden this spring."
		updates := models.FamilyUpdate{Story: &story}
		am.families.On("GetFamily", ctx, "family-1").Return(&models.Family{ID: "family-1", FamilyUserID: &userID}, nil)
		families.On("UpdateFamily", ctx, "family-1", updates).Return(&models.Family{ID: "family-1", Story: story}, nil)

		updated, err := service.UpdateFamily(ctx, fam, "family-1", updates)

		assert.NoError(t, err)
		assert.Equal(t, story, updated.Story)
		families.AssertExpectations(t)
	})

	t.Run("family login cannot update another family", func(t *testing.T) {
		service, families, _, am := newFamilyService()
		fam := models.Principal{ProfileID: "family-user-1", Role: models.RoleFamily}
		otherID := "someone-else"
		am.families.On("GetFamily", ctx, "family-2").Return(&models.Family{ID: "family-2", FamilyUserID: &otherID}, nil)

		_, err := service.UpdateFamily(ctx, fam, "family-2", models.FamilyUpdate{})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		families.AssertNotCalled(t, "UpdateFamily", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("family login adds a child to its own family", func(t *testing.T) {
		service, families, _, am := newFamilyService()
		userID := "family-user-1"
		fam := models.Principal{ProfileID: userID, Role: models.RoleFamily}
		child := &models.Child{FamilyID: "family-1", Name: "Amina"}
		am.families.On("GetFamily", ctx, "family-1").Return(&models.Family{ID: "family-1", FamilyUserID: &userID}, nil)
		families.On("CreateChild", ctx, child).Return(child, nil)

		created, err := service.CreateChild(ctx, fam, child)

		assert.NoError(t, err)
		assert.Equal(t, "family-1", created.FamilyID)
		families.AssertExpectations(t)
	})
}

func TestFamilyService_ListFamilies(t *testing.T) {
	ctx := context.Background()

	t.Run("donor list is scoped to active assignments", func(t *testing.T) {
		service, families, scope, _ := newFamilyService()
		donor := models.Principal{ProfileID: "donor-1", Role: models.RoleDonor}
		scope.On("ActiveFamilyIDsForDonor", ctx, "donor-1").Return([]string{"family-1", "family-3"}, nil)
		families.On("ListFamiliesByIDs", ctx, []string{"family-1", "family-3"}).Return([]models.Family{
			{ID: "family-1"}, {ID: "family-3"},
		}, nil)

		list, err := service.ListFamilies(ctx, donor, nil)

		assert.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("family login sees only its own row", func(t *testing.T) {
		service, families, _, _ := newFamilyService()
		fam := models.Principal{ProfileID: "family-user-1", Role: models.RoleFamily}
		families.On("GetFamilyByUserID", ctx, "family-user-1").Return(&models.Family{ID: "family-1"}, nil)

		list, err := service.ListFamilies(ctx, fam, nil)

		assert.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, "family-1", list[0].ID)
	})
}
