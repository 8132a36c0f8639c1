package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var (
	red   = domain.ProductOption{ID: "o-red", Name: "Red", GroupID: "g-color", GroupName: "Colour"}
	blue  = domain.ProductOption{ID: "o-blue", Name: "Blue", GroupID: "g-color", GroupName: "Colour"}
	small = domain.ProductOption{ID: "o-s", Name: "S", GroupID: "g-size", GroupName: "Size"}
	large = domain.ProductOption{ID: "o-l", Name: "L", GroupID: "g-size", GroupName: "Size"}
)

func shirtCatalog() *fakeCatalog {
	variants := []domain.Product{
		{ID: "v-red-s", ParentID: "p-1", Available: true, Options: []domain.ProductOption{red, small}},
		{ID: "v-red-l", ParentID: "p-1", Available: true, Options: []domain.ProductOption{red, large}},
		{ID: "v-blue-l", ParentID: "p-1", Available: true, Options: []domain.ProductOption{blue, large}},
	}
	products := map[string]*domain.Product{
		"p-1": {ID: "p-1", Name: "Shirt", Description: strings.Repeat("a", 300)},
	}
	for i := range variants {
		products[variants[i].ID] = &variants[i]
	}
	return &fakeCatalog{products: products, variants: map[string][]domain.Product{"p-1": variants}}
}

func TestBuildConfigurator(t *testing.T) {
	groups := BuildConfigurator(shirtCatalog().variants["p-1"])

	require.Len(t, groups, 2)
	assert.Equal(t, "g-color", groups[0].ID)
	assert.Equal(t, []domain.ProductOption{red, blue}, groups[0].Options)
	assert.Equal(t, []domain.ProductOption{small, large}, groups[1].Options)
}

func TestProductPageLoader_WithReviews(t *testing.T) {
	reviews := new(mockReviewRepository)
	loader := NewProductPageLoader(shirtCatalog(), reviews, fakeConfig{domain.ConfigShowReview: true}, fakeURLs{}, newTestLogger())
	ctx := context.Background()
	summary := &domain.ReviewSummary{AverageRating: 4.5, TotalCount: 2}

	reviews.On("Summary", ctx, "v-red-s").Return(summary, nil)

	page, err := loader.Load(ctx, "v-red-s", &domain.SalesChannelContext{SalesChannelID: "sc-1"})

	require.NoError(t, err)
	assert.Equal(t, "v-red-s", page.Product.ID)
	assert.Len(t, page.Configurator, 2)
	assert.Equal(t, summary, page.Reviews)
	assert.Equal(t, "url:frontend.detail.page:v-red-s", page.Meta.CanonicalURL)
}

func TestProductPageLoader_ReviewsOff(t *testing.T) {
	reviews := new(mockReviewRepository)
	loader := NewProductPageLoader(shirtCatalog(), reviews, fakeConfig{}, fakeURLs{}, newTestLogger())

	page, err := loader.Load(context.Background(), "p-1", &domain.SalesChannelContext{})

	require.NoError(t, err)
	assert.Nil(t, page.Reviews)
	assert.Len(t, page.Meta.Description, metaDescriptionLength)
	reviews.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
}

func TestProductPageLoader_ProductMissing(t *testing.T) {
	loader := NewProductPageLoader(shirtCatalog(), new(mockReviewRepository), fakeConfig{}, fakeURLs{}, newTestLogger())

	_, err := loader.Load(context.Background(), "p-404", &domain.SalesChannelContext{})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuickViewLoader(t *testing.T) {
	loader := NewQuickViewLoader(shirtCatalog(), new(mockReviewRepository), fakeConfig{}, fakeURLs{})

	page, err := loader.Load(context.Background(), "v-blue-l", &domain.SalesChannelContext{})

	require.NoError(t, err)
	assert.Equal(t, "url:frontend.detail.page:v-blue-l", page.DetailURL)
	assert.Nil(t, page.Reviews)
}

func TestCombinationFinder_ExactMatch(t *testing.T) {
	finder := NewCombinationFinder(shirtCatalog())

	found, err := finder.Find(context.Background(), domain.VariantSelection{
		ProductID: "v-red-s",
		Switched:  "g-size",
		Options:   map[string]string{"g-color": "o-red", "g-size": "o-l"},
	})

	require.NoError(t, err)
	assert.Equal(t, "v-red-l", found.VariantID)
	assert.Equal(t, []string{"o-l", "o-red"}, found.Options)
}

func TestCombinationFinder_KeepsSwitchedOption(t *testing.T) {
	finder := NewCombinationFinder(shirtCatalog())

	// blue only exists in L
	found, err := finder.Find(context.Background(), domain.VariantSelection{
		ProductID: "v-red-s",
		Switched:  "g-color",
		Options:   map[string]string{"g-color": "o-blue", "g-size": "o-s"},
	})

	require.NoError(t, err)
	assert.Equal(t, "v-blue-l", found.VariantID)
}

func TestCombinationFinder_StaysInFamily(t *testing.T) {
	catalog := shirtCatalog()
	catalog.variants["p-1"] = append(catalog.variants["p-1"], domain.Product{
		ID: "foreign", ParentID: "p-2", Options: []domain.ProductOption{{ID: "o-green", GroupID: "g-color"}},
	})
	finder := NewCombinationFinder(catalog)

	_, err := finder.Find(context.Background(), domain.VariantSelection{
		ProductID: "p-1",
		Switched:  "g-color",
		Options:   map[string]string{"g-color": "o-green"},
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
