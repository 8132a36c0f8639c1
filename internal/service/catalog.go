package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const productServiceName = "product-service"

// CatalogClient reads products from the product service.
type CatalogClient struct {
	doer    httpclient.HTTPDoer
	baseURL string
}

// NewCatalogClient creates a client for the product service at baseURL.
// doer is normally a circuit breaker around an httpclient.Client.
func NewCatalogClient(doer httpclient.HTTPDoer, baseURL string) *CatalogClient {
	return &CatalogClient{doer: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

type productEnvelope struct {
	Data *domain.Product `json:"data"`
}

type variantsEnvelope struct {
	Data []domain.Product `json:"data"`
}

// Product returns the product or variant with id.
func (c *CatalogClient) Product(ctx context.Context, id string) (*domain.Product, error) {
	var out productEnvelope
	if err := httpclient.GetJSON(ctx, c.doer, c.baseURL+"/api/v1/products/"+url.PathEscape(id), productServiceName, &out); err != nil {
		return nil, catalogError(err)
	}
	if out.Data == nil {
		return nil, apperrors.NotFound("product", id)
	}
	return out.Data, nil
}

// Variants returns every variant of the product family familyID.
func (c *CatalogClient) Variants(ctx context.Context, familyID string) ([]domain.Product, error) {
	var out variantsEnvelope
	if err := httpclient.GetJSON(ctx, c.doer, c.baseURL+"/api/v1/products/"+url.PathEscape(familyID)+"/variants", productServiceName, &out); err != nil {
		return nil, catalogError(err)
	}
	return out.Data, nil
}

func catalogError(err error) error {
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return apperrors.ServiceUnavailable("product catalog is unavailable")
	}
	return fmt.Errorf("catalog: %w", err)
}
