package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/routing"
)

const metaDescriptionLength = 255

// Catalog is the read side of the product service.
type Catalog interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Variants(ctx context.Context, familyID string) ([]domain.Product, error)
}

// ConfigReader reads boolean system config values.
type ConfigReader interface {
	GetBool(ctx context.Context, key, salesChannelID string) (bool, error)
}

// URLGenerator produces SEO URL placeholders for named routes.
type URLGenerator interface {
	Generate(name string, params map[string]any) (string, error)
}

// ProductPageLoader assembles the product detail page.
type ProductPageLoader struct {
	catalog Catalog
	reviews repository.ReviewRepository
	config  ConfigReader
	urls    URLGenerator
	logger  *slog.Logger
}

// NewProductPageLoader creates a new product page loader.
func NewProductPageLoader(catalog Catalog, reviews repository.ReviewRepository, config ConfigReader, urls URLGenerator, logger *slog.Logger) *ProductPageLoader {
	return &ProductPageLoader{
		catalog: catalog,
		reviews: reviews,
		config:  config,
		urls:    urls,
		logger:  logger,
	}
}

// Load returns the detail page of productID.
func (l *ProductPageLoader) Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.ProductPage, error) {
	product, err := l.catalog.Product(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	variants, err := l.catalog.Variants(ctx, product.FamilyID())
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	canonical, err := l.urls.Generate(routing.RouteDetail, map[string]any{"productId": product.ID})
	if err != nil {
		return nil, err
	}

	page := &domain.ProductPage{
		Product:      product,
		Configurator: BuildConfigurator(variants),
		Meta: domain.PageMeta{
			Title:        product.Name,
			Description:  truncate(product.Description, metaDescriptionLength),
			CanonicalURL: canonical,
		},
	}

	page.Reviews, err = loadSummary(ctx, l.config, l.reviews, product.ID, sc)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "product page loaded",
		slog.String("product_id", product.ID),
		slog.Int("variants", len(variants)),
	)
	return page, nil
}

// QuickViewLoader assembles the reduced quick view of a product.
type QuickViewLoader struct {
	catalog Catalog
	reviews repository.ReviewRepository
	config  ConfigReader
	urls    URLGenerator
}

// NewQuickViewLoader creates a new quick view loader.
func NewQuickViewLoader(catalog Catalog, reviews repository.ReviewRepository, config ConfigReader, urls URLGenerator) *QuickViewLoader {
	return &QuickViewLoader{catalog: catalog, reviews: reviews, config: config, urls: urls}
}

// Load returns the quick view of productID.
func (l *QuickViewLoader) Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.QuickViewPage, error) {
	product, err := l.catalog.Product(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	detailURL, err := l.urls.Generate(routing.RouteDetail, map[string]any{"productId": product.ID})
	if err != nil {
		return nil, err
	}

	page := &domain.QuickViewPage{Product: product, DetailURL: detailURL}
	page.Reviews, err = loadSummary(ctx, l.config, l.reviews, product.ID, sc)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// loadSummary returns the review summary, or nil when reviews are off.
func loadSummary(ctx context.Context, config ConfigReader, reviews repository.ReviewRepository, productID string, sc *domain.SalesChannelContext) (*domain.ReviewSummary, error) {
	show, err := config.GetBool(ctx, domain.ConfigShowReview, sc.SalesChannelID)
	if err != nil {
		return nil, fmt.Errorf("read review config: %w", err)
	}
	if !show {
		return nil, nil
	}
	summary, err := reviews.Summary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load review summary: %w", err)
	}
	return summary, nil
}

// BuildConfigurator lists the option groups of a product family with the
// options its variants offer, in the order they first appear.
func BuildConfigurator(variants []domain.Product) []domain.ConfiguratorGroup {
	var groups []domain.ConfiguratorGroup
	index := make(map[string]int)
	seen := make(map[string]struct{})

	for _, v := range variants {
		for _, o := range v.Options {
			i, ok := index[o.GroupID]
			if !ok {
				i = len(groups)
				index[o.GroupID] = i
				groups = append(groups, domain.ConfiguratorGroup{ID: o.GroupID, Name: o.GroupName})
			}
			if _, dup := seen[o.ID]; dup {
				continue
			}
			seen[o.ID] = struct{}{}
			groups[i].Options = append(groups[i].Options, o)
		}
	}
	return groups
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
