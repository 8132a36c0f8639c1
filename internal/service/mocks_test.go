package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() *event.Producer {
	return event.NewProducer(pkgkafka.NopPublisher{}, newTestLogger())
}

// --- Mock ContextRepository ---

type mockContextRepository struct {
	mock.Mock
}

func (m *mockContextRepository) Load(ctx context.Context, token string) (*domain.SalesChannelContext, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesChannelContext), args.Error(1)
}

func (m *mockContextRepository) Save(ctx context.Context, sc *domain.SalesChannelContext) error {
	args := m.Called(ctx, sc)
	return args.Error(0)
}

func (m *mockContextRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// --- Mock SalesChannelRepository ---

type mockSalesChannelRepository struct {
	mock.Mock
}

func (m *mockSalesChannelRepository) ListDomains(ctx context.Context) ([]domain.SalesChannelDomain, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SalesChannelDomain), args.Error(1)
}

func (m *mockSalesChannelRepository) FindDomain(ctx context.Context, salesChannelID, languageID string) (*domain.SalesChannelDomain, error) {
	args := m.Called(ctx, salesChannelID, languageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesChannelDomain), args.Error(1)
}

func (m *mockSalesChannelRepository) LanguageAvailable(ctx context.Context, salesChannelID, languageID string) (bool, error) {
	args := m.Called(ctx, salesChannelID, languageID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSalesChannelRepository) CurrencyAvailable(ctx context.Context, salesChannelID, currencyID string) (bool, error) {
	args := m.Called(ctx, salesChannelID, currencyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSalesChannelRepository) ListLanguages(ctx context.Context, salesChannelID string) ([]domain.Language, error) {
	args := m.Called(ctx, salesChannelID)
	return args.Get(0).([]domain.Language), args.Error(1)
}

func (m *mockSalesChannelRepository) ListChannelLanguages(ctx context.Context) ([][2]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([][2]string), args.Error(1)
}

// --- Mock ReviewRepository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Get(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

func (m *mockReviewRepository) FindByCustomer(ctx context.Context, productID, customerID string) (*domain.Review, error) {
	args := m.Called(ctx, productID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

// --- Mock SeoURLRepository ---

type mockSeoURLRepository struct {
	mock.Mock
}

func (m *mockSeoURLRepository) FindCanonicals(ctx context.Context, salesChannelID, languageID string, pathInfos []string) (map[string]string, error) {
	args := m.Called(ctx, salesChannelID, languageID, pathInfos)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockSeoURLRepository) Upsert(ctx context.Context, u *domain.SeoURL) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockSeoURLRepository) DeleteByForeignKey(ctx context.Context, routeName, foreignKey string) error {
	args := m.Called(ctx, routeName, foreignKey)
	return args.Error(0)
}

// --- Mock SystemConfigRepository ---

type mockSystemConfigRepository struct {
	mock.Mock
}

func (m *mockSystemConfigRepository) Load(ctx context.Context, salesChannelID string) (map[string]any, error) {
	args := m.Called(ctx, salesChannelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// --- Fakes ---

type fakeCatalog struct {
	products map[string]*domain.Product
	variants map[string][]domain.Product
	err      error
}

func (f *fakeCatalog) Product(_ context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return p, nil
}

func (f *fakeCatalog) Variants(_ context.Context, familyID string) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.variants[familyID], nil
}

type fakeConfig map[string]bool

func (f fakeConfig) GetBool(_ context.Context, key, _ string) (bool, error) {
	return f[key], nil
}

type fakeURLs struct{}

func (fakeURLs) Generate(name string, params map[string]any) (string, error) {
	return "url:" + name + ":" + params["productId"].(string), nil
}

func errNotFound(id string) error {
	return apperrors.NotFound("product", id)
}
