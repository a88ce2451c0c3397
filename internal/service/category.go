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

// CategoryService implements the business logic for category operations:
// CRUD with slug assignment, plus property and tag resolution up the
// category tree.
type CategoryService struct {
	repo     repository.CategoryRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, producer *event.Producer, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name       string
	ParentID   *string
	Properties []domain.PropertyDefinition
	Tags       []string
	Image      *string
}

// UpdateCategoryInput holds the parameters for updating a category.
// Nil fields are left unchanged.
type UpdateCategoryInput struct {
	Name       *string
	ParentID   *string
	Properties []domain.PropertyDefinition
	Tags       []string
	Image      *string
}

// CreateCategory creates a new category. The slug is derived from the name
// and de-duplicated against existing categories with a numeric suffix.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}
	if err := validatePropertyDefinitions(input.Properties); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *input.ParentID); err != nil {
			return nil, fmt.Errorf("get parent category: %w", err)
		}
	}

	categorySlug, err := slug.Make(ctx, input.Name, s.slugExists(""))
	if err != nil {
		return nil, fmt.Errorf("assign category slug: %w", err)
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:         uuid.New().String(),
		Name:       input.Name,
		Slug:       categorySlug,
		ParentID:   input.ParentID,
		Properties: input.Properties,
		Tags:       input.Tags,
		Image:      input.Image,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// GetCategoryBySlug retrieves a category by its slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// ListCategories returns every category as a flat list.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory applies partial updates to an existing category. Renaming
// re-derives the slug, excluding the category's own row from the
// de-duplication probe so an unchanged name keeps its slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("category name must not be empty")
		}
		if *input.Name != category.Name {
			newSlug, err := slug.Make(ctx, *input.Name, s.slugExists(id))
			if err != nil {
				return nil, fmt.Errorf("assign category slug: %w", err)
			}
			category.Slug = newSlug
		}
		category.Name = *input.Name
	}

	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, apperrors.InvalidInput("category cannot be its own parent")
		}
		if _, err := s.repo.GetByID(ctx, *input.ParentID); err != nil {
			return nil, fmt.Errorf("get parent category: %w", err)
		}
		category.ParentID = input.ParentID
	}

	if input.Properties != nil {
		if err := validatePropertyDefinitions(input.Properties); err != nil {
			return nil, err
		}
		category.Properties = input.Properties
	}

	if input.Tags != nil {
		category.Tags = input.Tags
	}

	if input.Image != nil {
		category.Image = input.Image
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// DeleteCategory removes a category by its ID. The repository re-parents
// children to the deleted node's own parent.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

// ResolveProperties returns the property schema effective for a category:
// its own definitions followed by every ancestor's, in walk order.
func (s *CategoryService) ResolveProperties(ctx context.Context, id string) ([]domain.PropertyDefinition, error) {
	lookup, err := s.treeLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	defs := domain.ResolveProperties(id, lookup)
	if defs == nil {
		defs = []domain.PropertyDefinition{}
	}
	return defs, nil
}

// ResolveTags returns a category's tag vocabulary. With inherited set, the
// vocabulary is unioned with every ancestor's tags.
func (s *CategoryService) ResolveTags(ctx context.Context, id string, inherited bool) ([]string, error) {
	lookup, err := s.treeLookup(ctx, id)
	if err != nil {
		return nil, err
	}

	var tags []string
	if inherited {
		tags = domain.ResolveTagsInherited(id, lookup)
	} else {
		tags = domain.ResolveTags(id, lookup)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// treeLookup loads the whole category table and builds an in-memory lookup,
// verifying that the requested id exists.
func (s *CategoryService) treeLookup(ctx context.Context, id string) (domain.CategoryLookup, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories for resolution: %w", err)
	}

	lookup := domain.LookupIn(categories)
	if lookup(id) == nil {
		return nil, apperrors.NotFound("category", id)
	}
	return lookup, nil
}

// slugExists adapts the repository probe to the slug generator, excluding
// the given row id from the collision check.
func (s *CategoryService) slugExists(excludeID string) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, candidate, excludeID)
	}
}

// validatePropertyDefinitions rejects unnamed properties and names declared
// twice in the same document.
func validatePropertyDefinitions(defs []domain.PropertyDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return apperrors.InvalidInput("property name is required")
		}
		if seen[def.Name] {
			return apperrors.InvalidInput(fmt.Sprintf("property %q is declared twice", def.Name))
		}
		seen[def.Name] = true
	}
	return nil
}
