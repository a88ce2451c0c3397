package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/repository"
	"github.com/yahyahetari/electronics-admin/pkg/database"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
)

// orderColumns is the standard SELECT column list for orders.
const orderColumns = `id, first_name, last_name, email, phone, address, address2,
	city, state, postal_code, country, notes, items, total_amount, shipping_cost,
	viewed, created_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Order line items are stored as a jsonb array on the order row: the checkout
// writes the whole document at once and the admin never edits lines, so
// there is nothing to normalize.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var (
		o         domain.Order
		itemsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.FirstName,
		&o.LastName,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.Address2,
		&o.City,
		&o.State,
		&o.PostalCode,
		&o.Country,
		&o.Notes,
		&itemsJSON,
		&o.TotalAmount,
		&o.ShippingCost,
		&o.Viewed,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalOrderItems(itemsJSON, &o); err != nil {
		return nil, err
	}

	return &o, nil
}

// List returns orders matching the given filter with the total count,
// newest first.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Viewed != nil {
		conditions = append(conditions, fmt.Sprintf("viewed = $%d", argIndex))
		args = append(args, *filter.Viewed)
		argIndex++
	}

	if filter.Email != nil {
		conditions = append(conditions, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *filter.Email)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o         domain.Order
			itemsJSON []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.FirstName,
			&o.LastName,
			&o.Email,
			&o.Phone,
			&o.Address,
			&o.Address2,
			&o.City,
			&o.State,
			&o.PostalCode,
			&o.Country,
			&o.Notes,
			&itemsJSON,
			&o.TotalAmount,
			&o.ShippingCost,
			&o.Viewed,
			&o.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalOrderItems(itemsJSON, &o); err != nil {
			return nil, 0, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, totalCount, nil
}

// ListAll returns every order, newest first, for dashboard aggregation.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o         domain.Order
			itemsJSON []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.FirstName,
			&o.LastName,
			&o.Email,
			&o.Phone,
			&o.Address,
			&o.Address2,
			&o.City,
			&o.State,
			&o.PostalCode,
			&o.Country,
			&o.Notes,
			&itemsJSON,
			&o.TotalAmount,
			&o.ShippingCost,
			&o.Viewed,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalOrderItems(itemsJSON, &o); err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// MarkViewed flips the admin-facing viewed flag on an order.
func (r *OrderRepository) MarkViewed(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET viewed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark order viewed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Customers groups all orders by email and returns per-customer order counts
// and lifetime spend, most frequent buyers first. The displayed name is
// taken from the customer's most recent order.
func (r *OrderRepository) Customers(ctx context.Context) ([]domain.CustomerSummary, error) {
	query := `
		SELECT email,
		       (array_agg(first_name ORDER BY created_at DESC))[1] AS first_name,
		       (array_agg(last_name ORDER BY created_at DESC))[1] AS last_name,
		       count(*) AS order_count,
		       sum(total_amount) AS total_spent
		FROM orders
		WHERE email <> ''
		GROUP BY email
		ORDER BY order_count DESC, total_spent DESC, email`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.CustomerSummary, 0)

	for rows.Next() {
		var c domain.CustomerSummary
		if err := rows.Scan(
			&c.Email,
			&c.FirstName,
			&c.LastName,
			&c.OrderCount,
			&c.TotalSpent,
		); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

// unmarshalOrderItems decodes the jsonb items column of an order.
func unmarshalOrderItems(data []byte, o *domain.Order) error {
	if len(data) == 0 || string(data) == "null" {
		o.Items = []domain.OrderItem{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Items); err != nil {
		return fmt.Errorf("unmarshal order items: %w", err)
	}
	return nil
}
