package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// DomainSource lists every configured sales channel domain.
type DomainSource interface {
	ListDomains(ctx context.Context) ([]domain.SalesChannelDomain, error)
}

type resolvedDomain struct {
	domain.SalesChannelDomain
	origin string
	base   string
}

// RequestTransformer maps incoming requests to a sales channel domain by
// longest URL prefix, strips the domain base path and stores the result as
// request Attributes.
type RequestTransformer struct {
	source  DomainSource
	refresh time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	domains  []resolvedDomain
	loadedAt time.Time
}

// NewRequestTransformer creates a transformer reloading domains from source
// at most every refresh interval.
func NewRequestTransformer(source DomainSource, refresh time.Duration, l *slog.Logger) *RequestTransformer {
	return &RequestTransformer{source: source, refresh: refresh, logger: l, now: time.Now}
}

// Middleware resolves the domain of each request. Unknown domains get 404.
func (t *RequestTransformer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme := ContextFromRequest(r).Scheme
		requestURL := scheme + "://" + r.Host + r.URL.Path

		attrs, err := t.Resolve(r.Context(), requestURL)
		if err != nil {
			httputil.WriteError(w, r, err, t.logger)
			return
		}
		attrs.OriginalPath = r.URL.Path

		ctx := WithAttributes(r.Context(), attrs)
		ctx = logger.WithSalesChannelID(ctx, attrs.SalesChannelID)

		stripped := r.WithContext(ctx)
		u := *r.URL
		u.Path = strings.TrimPrefix(r.URL.Path, attrs.BaseURL)
		if u.Path == "" {
			u.Path = "/"
		}
		u.RawPath = ""
		stripped.URL = &u
		if rctx := chi.RouteContext(ctx); rctx != nil {
			rctx.RoutePath = u.Path
		}

		next.ServeHTTP(w, stripped)
	})
}

// Resolve finds the domain with the longest URL that prefixes requestURL
// and returns its attributes.
func (t *RequestTransformer) Resolve(ctx context.Context, requestURL string) (Attributes, error) {
	domains, err := t.load(ctx)
	if err != nil {
		return Attributes{}, err
	}

	origin, path, err := splitURL(requestURL)
	if err != nil {
		return Attributes{}, apperrors.InvalidInput("malformed request url")
	}

	for _, d := range domains {
		if d.origin != origin {
			continue
		}
		if d.base == "" || path == d.base || strings.HasPrefix(path, d.base+"/") {
			return Attributes{
				SalesChannelID:  d.SalesChannelID,
				DomainID:        d.ID,
				LanguageID:      d.LanguageID,
				CurrencyID:      d.CurrencyID,
				SnippetSetID:    d.SnippetSetID,
				Locale:          d.Locale,
				BaseURL:         d.base,
				AbsoluteBaseURL: d.origin,
			}, nil
		}
	}
	return Attributes{}, apperrors.NotFound("sales channel domain", origin+path)
}

func (t *RequestTransformer) load(ctx context.Context) ([]resolvedDomain, error) {
	t.mu.RLock()
	fresh := t.domains != nil && t.now().Sub(t.loadedAt) < t.refresh
	domains := t.domains
	t.mu.RUnlock()
	if fresh {
		return domains, nil
	}

	list, err := t.source.ListDomains(ctx)
	if err != nil {
		if domains != nil {
			t.logger.WarnContext(ctx, "domain refresh failed, serving stale list",
				slog.String("error", err.Error()),
			)
			return domains, nil
		}
		return nil, fmt.Errorf("list sales channel domains: %w", err)
	}

	resolved := make([]resolvedDomain, 0, len(list))
	for _, d := range list {
		origin, path, err := splitURL(d.URL)
		if err != nil {
			t.logger.WarnContext(ctx, "skipping malformed sales channel domain",
				slog.String("domain_id", d.ID),
				slog.String("url", d.URL),
			)
			continue
		}
		resolved = append(resolved, resolvedDomain{SalesChannelDomain: d, origin: origin, base: path})
	}
	// Longest URL first so "/en" wins over "".
	sort.SliceStable(resolved, func(i, j int) bool {
		return len(resolved[i].origin+resolved[i].base) > len(resolved[j].origin+resolved[j].base)
	})

	t.mu.Lock()
	t.domains = resolved
	t.loadedAt = t.now()
	t.mu.Unlock()

	return resolved, nil
}

// splitURL normalises raw into its origin, without default port, and its
// path without trailing slash.
func splitURL(raw string) (origin, path string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("url %q has no scheme or host", raw)
	}

	rc := NewContext().WithTarget(u)
	return strings.ToLower(rc.Origin()), rc.BaseURL, nil
}
