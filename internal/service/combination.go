package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CombinationFinder resolves an option selection to a variant of the same
// product family.
type CombinationFinder struct {
	catalog Catalog
}

// NewCombinationFinder creates a new combination finder.
func NewCombinationFinder(catalog Catalog) *CombinationFinder {
	return &CombinationFinder{catalog: catalog}
}

// Find returns the variant whose options equal sel.Options. Without an
// exact match it returns the variant that keeps the switched option and
// shares the most other options with the selection, available variants
// first.
func (f *CombinationFinder) Find(ctx context.Context, sel domain.VariantSelection) (*domain.FoundCombination, error) {
	product, err := f.catalog.Product(ctx, sel.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	family := product.FamilyID()

	variants, err := f.catalog.Variants(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	switched, hasSwitched := sel.Options[sel.Switched]

	var best *domain.Product
	bestScore := -1
	for i := range variants {
		v := &variants[i]
		if v.FamilyID() != family {
			continue
		}
		options := v.OptionIDs()
		if sameOptions(options, sel.Options) {
			return combinationOf(v), nil
		}
		if hasSwitched && options[sel.Switched] != switched {
			continue
		}

		score := 0
		for group, id := range sel.Options {
			if options[group] == id {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && v.Available && !best.Available) {
			best, bestScore = v, score
		}
	}

	if best == nil {
		return nil, apperrors.NotFound("variant combination for product", sel.ProductID)
	}
	return combinationOf(best), nil
}

func sameOptions(a, b map[string]string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func combinationOf(v *domain.Product) *domain.FoundCombination {
	ids := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		ids = append(ids, o.ID)
	}
	sort.Strings(ids)
	return &domain.FoundCombination{VariantID: v.ID, Options: ids}
}
