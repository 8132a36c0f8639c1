package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topics the storefront publishes.
const (
	TopicContextSwitched = "storefront.context.switched"
	TopicReviewSaved     = "storefront.review.saved"
)

// Aggregate types.
const (
	AggregateTypeContext = "sales_channel_context"
	AggregateTypeReview  = "product_review"
)

// SourceStorefront identifies events originating from the storefront.
const SourceStorefront = "storefront"

// ContextSwitchedData is the payload for a context.switched event.
type ContextSwitchedData struct {
	Token              string `json:"token"`
	SalesChannelID     string `json:"sales_channel_id"`
	LanguageID         string `json:"language_id"`
	PreviousLanguageID string `json:"previous_language_id,omitempty"`
	CurrencyID         string `json:"currency_id"`
	CustomerID         string `json:"customer_id,omitempty"`
	DomainChanged      bool   `json:"domain_changed"`
}

// ReviewSavedData is the payload for a review.saved event.
type ReviewSavedData struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	CustomerID     string `json:"customer_id"`
	SalesChannelID string `json:"sales_channel_id"`
	Points         int    `json:"points"`
	Created        bool   `json:"created"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishContextSwitched publishes a context.switched event.
func (p *Producer) PublishContextSwitched(ctx context.Context, sc *domain.SalesChannelContext, previousLanguageID string, domainChanged bool) error {
	data := ContextSwitchedData{
		Token:              sc.Token,
		SalesChannelID:     sc.SalesChannelID,
		LanguageID:         sc.LanguageID,
		PreviousLanguageID: previousLanguageID,
		CurrencyID:         sc.CurrencyID,
		CustomerID:         sc.CustomerID,
		DomainChanged:      domainChanged,
	}

	event, err := pkgkafka.NewEvent(ctx, TopicContextSwitched, sc.Token, AggregateTypeContext, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create context.switched event: %w", err)
	}
	event.WithMetadata("sales_channel_id", sc.SalesChannelID)

	if err := p.kafka.Publish(ctx, TopicContextSwitched, event); err != nil {
		return fmt.Errorf("publish context.switched event: %w", err)
	}

	p.logger.DebugContext(ctx, "published context.switched event",
		slog.String("sales_channel_id", sc.SalesChannelID),
		slog.String("language_id", sc.LanguageID),
	)
	return nil
}

// PublishReviewSaved publishes a review.saved event.
func (p *Producer) PublishReviewSaved(ctx context.Context, review *domain.Review, created bool) error {
	data := ReviewSavedData{
		ID:             review.ID,
		ProductID:      review.ProductID,
		CustomerID:     review.CustomerID,
		SalesChannelID: review.SalesChannelID,
		Points:         review.Points,
		Created:        created,
	}

	event, err := pkgkafka.NewEvent(ctx, TopicReviewSaved, review.ID, AggregateTypeReview, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create review.saved event: %w", err)
	}
	event.WithMetadata("sales_channel_id", review.SalesChannelID)

	if err := p.kafka.Publish(ctx, TopicReviewSaved, event); err != nil {
		return fmt.Errorf("publish review.saved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.saved event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)
	return nil
}
