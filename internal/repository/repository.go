package repository

import (
	"context"

	"github.com/yahyahetari/electronics-admin/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID *string
	Search     *string
	Tag        *string
	Page       int
	PerPage    int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	Viewed  *bool
	Email   *string
	Page    int
	PerPage int
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// GetBySlug retrieves a category by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// ListAll returns every category as a flat list. The full list is needed
	// whenever property or tag inheritance is resolved, so there is no
	// paginated variant.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category, re-parenting its children to the deleted
	// node's own parent so subtrees are never orphaned.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether another category already holds the slug.
	// The row identified by excludeID is ignored, so renames never collide
	// with themselves.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// ListAll returns every product with its variants. Profit aggregation
	// matches order lines against the full catalog.
	ListAll(ctx context.Context) ([]domain.Product, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether another product already holds the slug,
	// ignoring the row identified by excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// OrderRepository defines the interface for order persistence operations.
// Orders are written by the storefront checkout; this service reads them and
// flips the admin-facing viewed flag.
type OrderRepository interface {
	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// ListAll returns every order, newest first. Dashboard aggregation folds
	// the whole history.
	ListAll(ctx context.Context) ([]domain.Order, error)

	// MarkViewed flips the admin-facing viewed flag on an order.
	MarkViewed(ctx context.Context, id string) error

	// Customers groups all orders by customer email and returns per-customer
	// order counts and lifetime spend.
	Customers(ctx context.Context) ([]domain.CustomerSummary, error)
}
