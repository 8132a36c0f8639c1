package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/cache"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Topics the storefront consumes to keep its caches fresh.
const (
	TopicProductUpdated      = "ecommerce.product.updated"
	TopicProductDeleted      = "ecommerce.product.deleted"
	TopicSystemConfigChanged = "storefront.system_config.changed"
	TopicThemeChanged        = "storefront.theme.changed"
)

// ConsumedTopics lists every topic the invalidation consumer subscribes to.
var ConsumedTopics = []string{
	TopicProductUpdated,
	TopicProductDeleted,
	TopicSystemConfigChanged,
	TopicThemeChanged,
}

// ProductEventData is the part of a product event payload the storefront reads.
type ProductEventData struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Name     string `json:"name"`
}

// SystemConfigChangedData names the changed keys. An empty SalesChannelID
// means the global default changed.
type SystemConfigChangedData struct {
	SalesChannelID string   `json:"sales_channel_id,omitempty"`
	Keys           []string `json:"keys"`
}

// ThemeChangedData names the sales channel whose theme changed and the
// changed keys.
type ThemeChangedData struct {
	SalesChannelID string   `json:"sales_channel_id,omitempty"`
	Keys           []string `json:"keys"`
}

// PageInvalidator drops cached pages by tag.
type PageInvalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// ConfigInvalidator drops cached system config of a sales channel.
type ConfigInvalidator interface {
	Invalidate(ctx context.Context, salesChannelID string) error
}

// ThemeInvalidator drops cached theme values of a sales channel.
type ThemeInvalidator interface {
	Invalidate(salesChannelID string)
}

// SeoURLIndexer keeps the SEO URLs of products in sync.
type SeoURLIndexer interface {
	RegenerateProduct(ctx context.Context, productID, name string) error
	DeleteProduct(ctx context.Context, productID string) error
}

// Consumer invalidates caches and SEO URLs when the data behind pages changes.
type Consumer struct {
	pages  PageInvalidator
	config ConfigInvalidator
	theme  ThemeInvalidator
	seo    SeoURLIndexer
	logger *slog.Logger
}

// NewConsumer creates a new invalidation consumer.
func NewConsumer(pages PageInvalidator, config ConfigInvalidator, theme ThemeInvalidator, seo SeoURLIndexer, logger *slog.Logger) *Consumer {
	return &Consumer{
		pages:  pages,
		config: config,
		theme:  theme,
		seo:    seo,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductUpdated:
		return c.handleProductUpdated(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	case TopicSystemConfigChanged:
		return c.handleSystemConfigChanged(ctx, event)
	case TopicThemeChanged:
		return c.handleThemeChanged(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleProductUpdated(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.updated data: %w", err)
	}

	// variant pages are tagged with the variant id, the parent page with the parent
	tags := []string{cache.ProductTag(data.ID)}
	if data.ParentID != "" {
		tags = append(tags, cache.ProductTag(data.ParentID))
	}
	if err := c.pages.Invalidate(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate product pages: %w", err)
	}
	if err := c.seo.RegenerateProduct(ctx, data.ID, data.Name); err != nil {
		return fmt.Errorf("regenerate seo urls: %w", err)
	}

	c.logger.InfoContext(ctx, "invalidated product from updated event",
		slog.String("product_id", data.ID),
	)
	return nil
}

func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	err := errors.Join(
		c.pages.Invalidate(ctx, cache.ProductTag(data.ID)),
		c.seo.DeleteProduct(ctx, data.ID),
	)
	if err != nil {
		return fmt.Errorf("invalidate deleted product: %w", err)
	}

	c.logger.InfoContext(ctx, "invalidated product from deleted event",
		slog.String("product_id", data.ID),
	)
	return nil
}

func (c *Consumer) handleSystemConfigChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data SystemConfigChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal system_config.changed data: %w", err)
	}

	if err := c.config.Invalidate(ctx, data.SalesChannelID); err != nil {
		return fmt.Errorf("invalidate system config: %w", err)
	}

	tags := make([]string, 0, len(data.Keys))
	for _, key := range data.Keys {
		tags = append(tags, cache.ConfigTag(key))
	}
	if err := c.pages.Invalidate(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate config pages: %w", err)
	}

	c.logger.InfoContext(ctx, "invalidated system config",
		slog.String("sales_channel_id", data.SalesChannelID),
		slog.Any("keys", data.Keys),
	)
	return nil
}

func (c *Consumer) handleThemeChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data ThemeChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal theme.changed data: %w", err)
	}

	c.theme.Invalidate(data.SalesChannelID)

	tags := make([]string, 0, len(data.Keys))
	for _, key := range data.Keys {
		tags = append(tags, cache.ThemeTag(key))
	}
	if err := c.pages.Invalidate(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate theme pages: %w", err)
	}

	c.logger.InfoContext(ctx, "invalidated theme config",
		slog.String("sales_channel_id", data.SalesChannelID),
	)
	return nil
}
