package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/repository"
	"github.com/yahyahetari/electronics-admin/pkg/database"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
)

// productColumns is the standard SELECT column list for products.
const productColumns = `id, title, slug, description, category_id, properties, tags, images, variants, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Product properties and variants are stored as jsonb documents: the variant
// list is an ordered array whose declaration order is load-bearing for
// matching and grouping, and a jsonb array round-trips that order exactly.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	propertiesJSON, variantsJSON, err := marshalProductDocs(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, title, slug, description, category_id, properties, tags, images, variants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Slug,
		p.Description,
		p.CategoryID,
		propertiesJSON,
		p.Tags,
		p.Images,
		variantsJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1`, productColumns)
	return r.scanProduct(ctx, query, slug)
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.Tag != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIndex))
		args = append(args, *filter.Tag)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var (
			p              domain.Product
			propertiesJSON []byte
			variantsJSON   []byte
		)

		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Slug,
			&p.Description,
			&p.CategoryID,
			&propertiesJSON,
			&p.Tags,
			&p.Images,
			&variantsJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		if err := unmarshalProductDocs(propertiesJSON, variantsJSON, &p); err != nil {
			return nil, 0, err
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// ListAll returns every product with its variants, for the reporting path
// that matches order lines against the whole catalog.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)

	for rows.Next() {
		var (
			p              domain.Product
			propertiesJSON []byte
			variantsJSON   []byte
		)

		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Slug,
			&p.Description,
			&p.CategoryID,
			&propertiesJSON,
			&p.Tags,
			&p.Images,
			&variantsJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}

		if err := unmarshalProductDocs(propertiesJSON, variantsJSON, &p); err != nil {
			return nil, err
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	propertiesJSON, variantsJSON, err := marshalProductDocs(p)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET title = $1, slug = $2, description = $3, category_id = $4,
		    properties = $5, tags = $6, images = $7, variants = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		p.Title,
		p.Slug,
		p.Description,
		p.CategoryID,
		propertiesJSON,
		p.Tags,
		p.Images,
		variantsJSON,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// SlugExists reports whether another product already carries the slug,
// ignoring the excludeID row.
func (r *ProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	// On the create path there is no row to exclude yet; an empty excludeID
	// binds as NULL rather than a malformed uuid.
	var exclude any
	if excludeID != "" {
		exclude = excludeID
	}

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`,
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}
	return exists, nil
}

// scanProduct executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var (
		p              domain.Product
		propertiesJSON []byte
		variantsJSON   []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.CategoryID,
		&propertiesJSON,
		&p.Tags,
		&p.Images,
		&variantsJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := unmarshalProductDocs(propertiesJSON, variantsJSON, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// marshalProductDocs encodes the jsonb document columns of a product.
func marshalProductDocs(p *domain.Product) (propertiesJSON, variantsJSON []byte, err error) {
	propertiesJSON, err = json.Marshal(p.Properties)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal product properties: %w", err)
	}

	variantsJSON, err = json.Marshal(p.Variants)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal product variants: %w", err)
	}

	return propertiesJSON, variantsJSON, nil
}

// unmarshalProductDocs decodes the jsonb document columns of a product.
func unmarshalProductDocs(propertiesJSON, variantsJSON []byte, p *domain.Product) error {
	if len(propertiesJSON) > 0 && string(propertiesJSON) != "null" {
		if err := json.Unmarshal(propertiesJSON, &p.Properties); err != nil {
			return fmt.Errorf("unmarshal product properties: %w", err)
		}
	}

	if len(variantsJSON) > 0 && string(variantsJSON) != "null" {
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return fmt.Errorf("unmarshal product variants: %w", err)
		}
	}

	return nil
}
