package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	pkgkafka "github.com/yahyahetari/electronics-admin/pkg/kafka"
	"github.com/yahyahetari/electronics-admin/pkg/logger"
)

// Kafka topic constants for admin catalog events.
const (
	TopicCategoryCreated = "electronics.category.created"
	TopicCategoryUpdated = "electronics.category.updated"
	TopicCategoryDeleted = "electronics.category.deleted"
	TopicProductCreated  = "electronics.product.created"
	TopicProductUpdated  = "electronics.product.updated"
	TopicProductDeleted  = "electronics.product.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeCategory = "category"
	AggregateTypeProduct  = "product"
)

// Source identifier for events originating from this service.
const SourceAdminService = "electronics-admin"

// CategoryData is the payload for category lifecycle events. The storefront
// consumes these to keep its navigation tree warm.
type CategoryData struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	ParentID *string  `json:"parent_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ProductData is the payload for product lifecycle events. Variants are left
// out: consumers that need pricing fetch the product document.
type ProductData struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	CategoryID *string  `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// DeletedData is the payload for deletion events.
type DeletedData struct {
	ID string `json:"id"`
}

// publisher is the slice of the Kafka producer this package relies on.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the admin service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish stamps the originating request's correlation ID on the event and
// hands it to the Kafka producer.
func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	return p.kafka.Publish(ctx, topic, event)
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryCreated, c)
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryUpdated, c)
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id string) error {
	event, err := pkgkafka.NewEvent(TopicCategoryDeleted, id, AggregateTypeCategory, SourceAdminService, DeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create category.deleted event: %w", err)
	}

	if err := p.publish(ctx, TopicCategoryDeleted, event); err != nil {
		return fmt.Errorf("publish category.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published category.deleted event",
		slog.String("category_id", id),
	)

	return nil
}

func (p *Producer) publishCategory(ctx context.Context, topic string, c *domain.Category) error {
	data := CategoryData{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		ParentID: c.ParentID,
		Tags:     c.Tags,
	}

	event, err := pkgkafka.NewEvent(topic, c.ID, AggregateTypeCategory, SourceAdminService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published category event",
		slog.String("topic", topic),
		slog.String("category_id", c.ID),
		slog.String("slug", c.Slug),
	)

	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, prod *domain.Product) error {
	return p.publishProduct(ctx, TopicProductCreated, prod)
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, prod *domain.Product) error {
	return p.publishProduct(ctx, TopicProductUpdated, prod)
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	event, err := pkgkafka.NewEvent(TopicProductDeleted, id, AggregateTypeProduct, SourceAdminService, DeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", id),
	)

	return nil
}

func (p *Producer) publishProduct(ctx context.Context, topic string, prod *domain.Product) error {
	data := ProductData{
		ID:         prod.ID,
		Title:      prod.Title,
		Slug:       prod.Slug,
		CategoryID: prod.CategoryID,
		Tags:       prod.Tags,
	}

	event, err := pkgkafka.NewEvent(topic, prod.ID, AggregateTypeProduct, SourceAdminService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.String("product_id", prod.ID),
		slog.String("slug", prod.Slug),
	)

	return nil
}
