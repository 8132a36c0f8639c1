package http

import (
	"context"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
)

// ContextResolver loads or creates the sales channel context of a request.
type ContextResolver interface {
	Resolve(ctx context.Context, token string, attrs routing.Attributes, customerID string) (*domain.SalesChannelContext, error)
}

// ContextSwitcher applies context switch requests.
type ContextSwitcher interface {
	Switch(ctx context.Context, sc *domain.SalesChannelContext, data domain.ContextSwitch) (*domain.ContextSwitchResult, error)
}

// ProductPageLoader loads the product detail page.
type ProductPageLoader interface {
	Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.ProductPage, error)
}

// QuickViewLoader loads the quick view fragment.
type QuickViewLoader interface {
	Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.QuickViewPage, error)
}

// VariantFinder resolves an option selection to a variant.
type VariantFinder interface {
	Find(ctx context.Context, sel domain.VariantSelection) (*domain.FoundCombination, error)
}

// ReviewService stores customer reviews.
type ReviewService interface {
	Save(ctx context.Context, productID string, sub domain.ReviewSubmission, sc *domain.SalesChannelContext) (*domain.Review, error)
}

// ReviewLoader loads a page of product reviews.
type ReviewLoader interface {
	Load(ctx context.Context, productID string, q url.Values, sc *domain.SalesChannelContext) (*domain.ReviewPage, error)
}

// ConfigStore reads system config flags.
type ConfigStore interface {
	GetBool(ctx context.Context, key, salesChannelID string) (bool, error)
}

// LanguageLister lists the languages a sales channel offers.
type LanguageLister interface {
	ListLanguages(ctx context.Context, salesChannelID string) ([]domain.Language, error)
}

// SeoURLGenerator emits SEO URL placeholders and swaps them for real URLs.
type SeoURLGenerator interface {
	Generate(name string, params map[string]any) (string, error)
	Replace(ctx context.Context, content, host string, sc *domain.SalesChannelContext) (string, error)
}
