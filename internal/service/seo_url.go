package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/slug"
)

// SeoURLPlaceholder marks a technical path in rendered content until Replace
// swaps it for the SEO URL of the current sales channel and language.
const SeoURLPlaceholder = "124c71d524604ccbad6042edce3ac799"

var placeholderRegexp = regexp.MustCompile(SeoURLPlaceholder + `([^#]*)#`)

// SeoURLService generates SEO URL placeholders and resolves them.
type SeoURLService struct {
	router   *routing.Router
	repo     repository.SeoURLRepository
	channels repository.SalesChannelRepository
	logger   *slog.Logger
}

// NewSeoURLService creates a new SEO URL service.
func NewSeoURLService(router *routing.Router, repo repository.SeoURLRepository, channels repository.SalesChannelRepository, logger *slog.Logger) *SeoURLService {
	return &SeoURLService{
		router:   router,
		repo:     repo,
		channels: channels,
		logger:   logger,
	}
}

// Generate returns the placeholder for route name with params.
func (s *SeoURLService) Generate(name string, params map[string]any) (string, error) {
	path, err := s.router.PathInfo(name, params)
	if err != nil {
		return "", err
	}
	return SeoURLPlaceholder + path + "#", nil
}

// Replace swaps every placeholder in content for host followed by the
// canonical SEO path, or the technical path when there is none.
func (s *SeoURLService) Replace(ctx context.Context, content, host string, sc *domain.SalesChannelContext) (string, error) {
	matches := placeholderRegexp.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	seen := make(map[string]struct{}, len(matches))
	pathInfos := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		pathInfos = append(pathInfos, m[1])
	}

	canonicals, err := s.repo.FindCanonicals(ctx, sc.SalesChannelID, sc.LanguageID, pathInfos)
	if err != nil {
		return "", fmt.Errorf("find seo urls: %w", err)
	}

	return placeholderRegexp.ReplaceAllStringFunc(content, func(match string) string {
		pathInfo := match[len(SeoURLPlaceholder) : len(match)-1]
		if seoPath, ok := canonicals[pathInfo]; ok {
			return host + "/" + strings.TrimLeft(seoPath, "/")
		}
		return host + pathInfo
	}), nil
}

// RegenerateProduct writes the canonical detail page URL of a product for
// every sales channel language.
func (s *SeoURLService) RegenerateProduct(ctx context.Context, productID, name string) error {
	seoPath := slug.Path(name, productID)
	if seoPath == "" {
		return nil
	}
	pathInfo, err := s.router.PathInfo(routing.RouteDetail, map[string]any{"productId": productID})
	if err != nil {
		return err
	}

	pairs, err := s.channels.ListChannelLanguages(ctx)
	if err != nil {
		return fmt.Errorf("list channel languages: %w", err)
	}
	for _, pair := range pairs {
		u := &domain.SeoURL{
			ID:             uuid.NewString(),
			SalesChannelID: pair[0],
			LanguageID:     pair[1],
			RouteName:      routing.RouteDetail,
			ForeignKey:     productID,
			PathInfo:       pathInfo,
			SeoPathInfo:    seoPath,
			IsCanonical:    true,
		}
		if err := s.repo.Upsert(ctx, u); err != nil {
			return fmt.Errorf("upsert seo url: %w", err)
		}
	}

	s.logger.DebugContext(ctx, "regenerated product seo urls",
		slog.String("product_id", productID),
		slog.String("seo_path", seoPath),
		slog.Int("channels", len(pairs)),
	)
	return nil
}

// DeleteProduct removes the SEO URLs of a product.
func (s *SeoURLService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.repo.DeleteByForeignKey(ctx, routing.RouteDetail, productID); err != nil {
		return fmt.Errorf("delete seo urls: %w", err)
	}
	return nil
}
