package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
)

// --- Mock Repository ---

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func newTestCategoryService(repo *mockCategoryRepository) *CategoryService {
	return NewCategoryService(repo, newTestProducer(), newTestLogger())
}

// --- Tests ---

func TestCreateCategory_Success(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	repo.On("SlugExists", mock.Anything, "هواتف", "").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Category")).Return(nil)

	input := &CreateCategoryInput{
		Name: "هواتف",
		Properties: []domain.PropertyDefinition{
			{Name: "color", Values: []string{"red", "blue"}},
		},
		Tags: []string{"phones"},
	}

	category, err := svc.CreateCategory(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "هواتف", category.Slug)
	repo.AssertExpectations(t)
}

func TestCreateCategory_EmptyName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	category, err := svc.CreateCategory(context.Background(), &CreateCategoryInput{})
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateCategory_DuplicatePropertyName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	input := &CreateCategoryInput{
		Name: "هواتف",
		Properties: []domain.PropertyDefinition{
			{Name: "color", Values: []string{"red"}},
			{Name: "color", Values: []string{"blue"}},
		},
	}

	category, err := svc.CreateCategory(context.Background(), input)
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateCategory_ParentNotFound(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	repo.On("GetByID", mock.Anything, "missing-parent").Return(nil, apperrors.ErrNotFound)

	input := &CreateCategoryInput{Name: "سامسونج", ParentID: strPtr("missing-parent")}
	category, err := svc.CreateCategory(context.Background(), input)
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create")
}

func TestUpdateCategory_RenameRegeneratesSlug(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	existing := &domain.Category{ID: "cat-1", Name: "هواتف", Slug: "هواتف"}
	repo.On("GetByID", mock.Anything, "cat-1").Return(existing, nil)
	repo.On("SlugExists", mock.Anything, "أجهزة", "cat-1").Return(false, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Category")).Return(nil)

	category, err := svc.UpdateCategory(context.Background(), "cat-1", &UpdateCategoryInput{
		Name: strPtr("أجهزة"),
	})
	require.NoError(t, err)
	assert.Equal(t, "أجهزة", category.Slug)
	repo.AssertExpectations(t)
}

func TestUpdateCategory_SelfParentRejected(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	existing := &domain.Category{ID: "cat-1", Name: "هواتف", Slug: "هواتف"}
	repo.On("GetByID", mock.Anything, "cat-1").Return(existing, nil)

	category, err := svc.UpdateCategory(context.Background(), "cat-1", &UpdateCategoryInput{
		ParentID: strPtr("cat-1"),
	})
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update")
}

func TestDeleteCategory_Success(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	repo.On("Delete", mock.Anything, "cat-1").Return(nil)

	err := svc.DeleteCategory(context.Background(), "cat-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestResolveProperties_WalksAncestors(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	categories := []domain.Category{
		{
			ID:   "root",
			Name: "إلكترونيات",
			Properties: []domain.PropertyDefinition{
				{Name: "warranty", Values: []string{"1y", "2y"}},
			},
		},
		{
			ID:       "phones",
			Name:     "هواتف",
			ParentID: strPtr("root"),
			Properties: []domain.PropertyDefinition{
				{Name: "color", Values: []string{"black", "white"}},
			},
		},
	}
	repo.On("ListAll", mock.Anything).Return(categories, nil)

	defs, err := svc.ResolveProperties(context.Background(), "phones")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	// Own definitions first, then the ancestor's.
	assert.Equal(t, "color", defs[0].Name)
	assert.Equal(t, "warranty", defs[1].Name)
}

func TestResolveProperties_UnknownCategory(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	repo.On("ListAll", mock.Anything).Return([]domain.Category{}, nil)

	defs, err := svc.ResolveProperties(context.Background(), "ghost")
	assert.Nil(t, defs)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveTags_OwnVersusInherited(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)

	categories := []domain.Category{
		{ID: "root", Name: "إلكترونيات", Tags: []string{"electronics"}},
		{ID: "phones", Name: "هواتف", ParentID: strPtr("root"), Tags: []string{"phones", "mobile"}},
	}
	repo.On("ListAll", mock.Anything).Return(categories, nil)

	own, err := svc.ResolveTags(context.Background(), "phones", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"phones", "mobile"}, own)

	inherited, err := svc.ResolveTags(context.Background(), "phones", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"phones", "mobile", "electronics"}, inherited)
}
