package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/repository"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
)

// --- Mock Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) MarkViewed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderRepository) Customers(ctx context.Context) ([]domain.CustomerSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CustomerSummary), args.Error(1)
}

// --- Tests ---

func TestListOrders_ClampsPagination(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, newTestLogger())

	expected := repository.OrderFilter{Page: 1, PerPage: 20}
	repo.On("List", mock.Anything, expected).Return([]domain.Order{}, 0, nil)

	_, _, err := svc.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, newTestLogger())

	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	order, err := svc.GetOrder(context.Background(), "missing")
	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkViewed_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, newTestLogger())

	repo.On("MarkViewed", mock.Anything, "order-1").Return(nil)

	err := svc.MarkViewed(context.Background(), "order-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMarkViewed_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, newTestLogger())

	repo.On("MarkViewed", mock.Anything, "missing").Return(apperrors.NotFound("order", "missing"))

	err := svc.MarkViewed(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCustomers_PassesThrough(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, newTestLogger())

	expected := []domain.CustomerSummary{
		{Email: "yahya@example.com", OrderCount: 3, TotalSpent: 2500},
	}
	repo.On("Customers", mock.Anything).Return(expected, nil)

	customers, err := svc.Customers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, customers)
}
