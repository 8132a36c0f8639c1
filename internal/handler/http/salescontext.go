package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

type contextKey string

const salesChannelContextKey contextKey = "sales_channel_context"

var errNoSalesChannelContext = errors.New("request has no sales channel context")

// WithSalesChannelContext stores sc in ctx.
func WithSalesChannelContext(ctx context.Context, sc *domain.SalesChannelContext) context.Context {
	return context.WithValue(ctx, salesChannelContextKey, sc)
}

// SalesChannelContextFrom returns the context stored by WithSalesChannelContext.
func SalesChannelContextFrom(ctx context.Context) (*domain.SalesChannelContext, bool) {
	sc, ok := ctx.Value(salesChannelContextKey).(*domain.SalesChannelContext)
	return sc, ok && sc != nil
}

// SalesChannelContextMiddleware resolves the visitor context from the
// context token and hands the token back on the response. It must run after
// the request transformer and Auth.
func SalesChannelContextMiddleware(resolver ContextResolver, cookieTTL time.Duration, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs, ok := routing.AttributesFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.NotFound("sales channel domain", r.Host), l)
				return
			}

			token := r.Header.Get(middleware.ContextTokenHeader)
			if token == "" {
				if c, err := r.Cookie(middleware.ContextTokenHeader); err == nil {
					token = c.Value
				}
			}

			sc, err := resolver.Resolve(r.Context(), token, attrs, middleware.CustomerIDFromContext(r.Context()))
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			w.Header().Set(middleware.ContextTokenHeader, sc.Token)
			http.SetCookie(w, &http.Cookie{
				Name:     middleware.ContextTokenHeader,
				Value:    sc.Token,
				Path:     "/",
				MaxAge:   int(cookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithSalesChannelContext(r.Context(), sc)
			if sc.LoggedIn() && middleware.CustomerIDFromContext(ctx) == "" {
				ctx = middleware.WithCustomerID(ctx, sc.CustomerID)
				ctx = logger.WithCustomerID(ctx, sc.CustomerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CacheVariation separates cached pages by language and currency.
func CacheVariation(r *http.Request) string {
	sc, ok := SalesChannelContextFrom(r.Context())
	if !ok {
		return ""
	}
	return sc.LanguageID + "|" + sc.CurrencyID
}

func salesChannelContext(r *http.Request) (*domain.SalesChannelContext, error) {
	sc, ok := SalesChannelContextFrom(r.Context())
	if !ok {
		return nil, apperrors.Internal(errNoSalesChannelContext)
	}
	return sc, nil
}
