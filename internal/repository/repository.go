package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// SalesChannelRepository reads sales channel domains and what each channel offers.
type SalesChannelRepository interface {
	// ListDomains returns every domain of every sales channel.
	ListDomains(ctx context.Context) ([]domain.SalesChannelDomain, error)

	// FindDomain returns the first domain of the sales channel in languageID,
	// or a not found error.
	FindDomain(ctx context.Context, salesChannelID, languageID string) (*domain.SalesChannelDomain, error)

	LanguageAvailable(ctx context.Context, salesChannelID, languageID string) (bool, error)
	CurrencyAvailable(ctx context.Context, salesChannelID, currencyID string) (bool, error)

	// ListLanguages returns the languages of the sales channel ordered by name.
	ListLanguages(ctx context.Context, salesChannelID string) ([]domain.Language, error)

	// ListChannelLanguages returns every (sales channel, language) pair with a domain.
	ListChannelLanguages(ctx context.Context) ([][2]string, error)
}

// SystemConfigRepository reads system config values.
type SystemConfigRepository interface {
	// Load returns the effective config of a sales channel: channel values
	// override global ones.
	Load(ctx context.Context, salesChannelID string) (map[string]any, error)
}

// ThemeRepository reads resolved theme configuration.
type ThemeRepository interface {
	ThemeConfig(ctx context.Context, salesChannelID string) (map[string]any, error)
}

// SeoURLRepository stores human readable URLs.
type SeoURLRepository interface {
	// FindCanonicals maps each known path info to its canonical SEO path.
	FindCanonicals(ctx context.Context, salesChannelID, languageID string, pathInfos []string) (map[string]string, error)

	// Upsert stores u as the canonical URL of its path info.
	Upsert(ctx context.Context, u *domain.SeoURL) error

	// DeleteByForeignKey removes every URL of an entity.
	DeleteByForeignKey(ctx context.Context, routeName, foreignKey string) error
}

// ReviewRepository defines the persistence operations for product reviews.
type ReviewRepository interface {
	Get(ctx context.Context, id string) (*domain.Review, error)
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error

	// List returns one page of active reviews and the total matching filter.
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)

	// Summary aggregates the active reviews of a product.
	Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error)

	// FindByCustomer returns the review a customer wrote for a product, or nil.
	FindByCustomer(ctx context.Context, productID, customerID string) (*domain.Review, error)
}

// ContextRepository persists sales channel contexts by token.
type ContextRepository interface {
	Load(ctx context.Context, token string) (*domain.SalesChannelContext, error)
	Save(ctx context.Context, sc *domain.SalesChannelContext) error
	Delete(ctx context.Context, token string) error
}
