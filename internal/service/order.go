package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/repository"
)

// OrderService implements the read-side business logic for orders. Orders
// are written by the storefront checkout; the admin lists them, inspects
// them, marks them viewed, and derives the customer roster.
type OrderService struct {
	repo   repository.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		logger: logger,
	}
}

// ListOrders returns a filtered, paginated list of orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// MarkViewed flips the admin-facing viewed flag on an order.
func (s *OrderService) MarkViewed(ctx context.Context, id string) error {
	if err := s.repo.MarkViewed(ctx, id); err != nil {
		return fmt.Errorf("mark order viewed: %w", err)
	}

	s.logger.InfoContext(ctx, "order marked viewed",
		slog.String("order_id", id),
	)

	return nil
}

// Customers returns the per-customer order roster grouped by email.
func (s *OrderService) Customers(ctx context.Context) ([]domain.CustomerSummary, error) {
	customers, err := s.repo.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}
