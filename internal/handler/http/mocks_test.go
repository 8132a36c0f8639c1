package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/internal/snippet"
)

// =============================================================================
// Mocks
// =============================================================================

type mockSwitcher struct {
	mock.Mock
}

func (m *mockSwitcher) Switch(ctx context.Context, sc *domain.SalesChannelContext, data domain.ContextSwitch) (*domain.ContextSwitchResult, error) {
	args := m.Called(ctx, sc, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContextSwitchResult), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, token string, attrs routing.Attributes, customerID string) (*domain.SalesChannelContext, error) {
	args := m.Called(ctx, token, attrs, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesChannelContext), args.Error(1)
}

type mockPages struct {
	mock.Mock
}

func (m *mockPages) Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.ProductPage, error) {
	args := m.Called(ctx, productID, sc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductPage), args.Error(1)
}

type mockQuickView struct {
	mock.Mock
}

func (m *mockQuickView) Load(ctx context.Context, productID string, sc *domain.SalesChannelContext) (*domain.QuickViewPage, error) {
	args := m.Called(ctx, productID, sc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuickViewPage), args.Error(1)
}

type mockVariants struct {
	mock.Mock
}

func (m *mockVariants) Find(ctx context.Context, sel domain.VariantSelection) (*domain.FoundCombination, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoundCombination), args.Error(1)
}

type mockReviews struct {
	mock.Mock
}

func (m *mockReviews) Save(ctx context.Context, productID string, sub domain.ReviewSubmission, sc *domain.SalesChannelContext) (*domain.Review, error) {
	args := m.Called(ctx, productID, sub, sc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type mockListing struct {
	mock.Mock
}

func (m *mockListing) Load(ctx context.Context, productID string, q url.Values, sc *domain.SalesChannelContext) (*domain.ReviewPage, error) {
	args := m.Called(ctx, productID, q, sc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewPage), args.Error(1)
}

type mockConfig struct {
	mock.Mock
}

func (m *mockConfig) GetBool(ctx context.Context, key, salesChannelID string) (bool, error) {
	args := m.Called(ctx, key, salesChannelID)
	return args.Bool(0), args.Error(1)
}

// fakeSeoURLs marks generated URLs with "SEOURL" and replaces the mark with
// the host, which is enough to see that both steps ran.
type fakeSeoURLs struct {
	router *routing.Router
	hosts  []string
}

func (f *fakeSeoURLs) Generate(name string, params map[string]any) (string, error) {
	path, err := f.router.PathInfo(name, params)
	if err != nil {
		return "", err
	}
	return "SEOURL" + path + "#", nil
}

func (f *fakeSeoURLs) Replace(_ context.Context, content, host string, _ *domain.SalesChannelContext) (string, error) {
	f.hosts = append(f.hosts, host)
	out := content
	for {
		start := strings.Index(out, "SEOURL")
		if start < 0 {
			return out, nil
		}
		end := strings.IndexByte(out[start:], '#')
		if end < 0 {
			return out, nil
		}
		out = out[:start] + host + out[start+len("SEOURL"):start+end] + out[start+end+1:]
	}
}

type fakeTheme struct {
	values map[string]any
}

func (f fakeTheme) Get(_ context.Context, _, key string) (any, error) {
	return f.values[key], nil
}

type fakeLanguages []domain.Language

func (f fakeLanguages) ListLanguages(context.Context, string) ([]domain.Language, error) {
	return f, nil
}

var testLanguages = fakeLanguages{
	{ID: "lang-de", Name: "Deutsch", Locale: "de-DE"},
	{ID: "lang-en", Name: "English", Locale: "en-GB"},
}

// =============================================================================
// Helpers
// =============================================================================

const (
	testChannel = "sc-1"
	testHost    = "http://shop.test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAttributes() routing.Attributes {
	return routing.Attributes{
		SalesChannelID:  testChannel,
		DomainID:        "d-en",
		LanguageID:      "lang-en",
		CurrencyID:      "eur",
		Locale:          "en-GB",
		BaseURL:         "/en",
		AbsoluteBaseURL: testHost,
	}
}

func guestContext() *domain.SalesChannelContext {
	return &domain.SalesChannelContext{
		Token:          "tok-1",
		SalesChannelID: testChannel,
		DomainID:       "d-en",
		LanguageID:     "lang-en",
		CurrencyID:     "eur",
	}
}

func customerContext() *domain.SalesChannelContext {
	sc := guestContext()
	sc.CustomerID = "cust-1"
	return sc
}

// withStorefront injects what the transformer and context middleware would
// have resolved.
func withStorefront(attrs routing.Attributes, sc *domain.SalesChannelContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := routing.WithAttributes(r.Context(), attrs)
			ctx = WithSalesChannelContext(ctx, sc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRenderer(t *testing.T, seo SeoURLGenerator) *Renderer {
	t.Helper()
	snippets, err := snippet.NewService(snippet.FS(), "en-GB", snippet.EnGB{})
	require.NoError(t, err)
	rd, err := NewRenderer(snippets, fakeTheme{values: map[string]any{"sw-logo-desktop": "/logo.svg"}}, testLanguages, seo, testLogger())
	require.NoError(t, err)
	return rd
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func newChiRouter(attrs routing.Attributes, sc *domain.SalesChannelContext) *chi.Mux {
	r := chi.NewRouter()
	r.Use(withStorefront(attrs, sc))
	return r
}

func chiParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
