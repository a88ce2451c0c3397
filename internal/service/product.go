package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/event"
	"github.com/yahyahetari/electronics-admin/internal/repository"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
	"github.com/yahyahetari/electronics-admin/pkg/slug"
)

// ProductService implements the business logic for product operations,
// including variant validation and display grouping.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Title       string
	Description string
	CategoryID  *string
	Properties  domain.PropertyMap
	Tags        []string
	Images      []string
	Variants    []domain.Variant
}

// UpdateProductInput holds the parameters for updating a product.
// Nil fields are left unchanged.
type UpdateProductInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	Properties  *domain.PropertyMap
	Tags        []string
	Images      []string
	Variants    []domain.Variant
}

// CreateProduct creates a new product. The variant list is checked for
// colliding property combinations before anything is persisted, and the slug
// is derived from the title with a numeric suffix on collision.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("product title is required")
	}
	if err := domain.ValidateVariants(input.Variants); err != nil {
		return nil, err
	}

	productSlug, err := slug.Make(ctx, input.Title, s.slugExists(""))
	if err != nil {
		return nil, fmt.Errorf("assign product slug: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Slug:        productSlug,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Properties:  input.Properties,
		Tags:        input.Tags,
		Images:      input.Images,
		Variants:    input.Variants,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.Int("variants", len(product.Variants)),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies partial updates to an existing product. A changed
// title re-derives the slug, excluding the product's own row from the
// collision probe. A non-nil variant list replaces the stored one after
// validation.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("product title must not be empty")
		}
		if *input.Title != product.Title {
			newSlug, err := slug.Make(ctx, *input.Title, s.slugExists(id))
			if err != nil {
				return nil, fmt.Errorf("assign product slug: %w", err)
			}
			product.Slug = newSlug
		}
		product.Title = *input.Title
	}

	if input.Description != nil {
		product.Description = *input.Description
	}

	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}

	if input.Properties != nil {
		product.Properties = *input.Properties
	}

	if input.Tags != nil {
		product.Tags = input.Tags
	}

	if input.Images != nil {
		product.Images = input.Images
	}

	if input.Variants != nil {
		if err := domain.ValidateVariants(input.Variants); err != nil {
			return nil, err
		}
		product.Variants = input.Variants
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	// Verify the product exists before deleting.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// VariantGroups returns a product's variants folded into display groups,
// keyed on cost, price, and the structural second property.
func (s *ProductService) VariantGroups(ctx context.Context, id string) ([]domain.VariantGroup, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for variant groups: %w", err)
	}

	groups := domain.GroupVariants(product.Variants)
	if groups == nil {
		groups = []domain.VariantGroup{}
	}
	return groups, nil
}

// slugExists adapts the repository probe to the slug generator, excluding
// the given row id from the collision check.
func (s *ProductService) slugExists(excludeID string) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, candidate, excludeID)
	}
}
