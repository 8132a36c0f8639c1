package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds the middleware and handlers of the storefront router.
type RouterConfig struct {
	Transformer    *routing.RequestTransformer
	Resolver       ContextResolver
	TokenValidator middleware.TokenValidator
	// HTTPCache is optional. Nil serves every page uncached.
	HTTPCache *cache.HTTPCache
	Forwarder *routing.Forwarder

	Home    *HomeHandler
	Context *ContextHandler
	Product *ProductHandler

	Health     *health.Handler
	CORS       middleware.CORSConfig
	PprofCIDRs []string

	ContextTTL      time.Duration
	ReviewRateLimit float64
	ReviewBurst     int
	// BrowserMaxAge is the Cache-Control max-age of anonymous page responses.
	BrowserMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
// Every named route is also registered with the forwarder.
func NewRouter(cfg RouterConfig, logger *slog.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	handlers := map[string]http.HandlerFunc{
		routing.RouteHome:           cfg.Home.Index,
		routing.RouteConfigure:      cfg.Context.Configure,
		routing.RouteSwitchLanguage: cfg.Context.SwitchLanguage,
		routing.RouteDetail:         cfg.Product.Index,
		routing.RouteDetailSwitch:   cfg.Product.Switch,
		routing.RouteQuickView:      cfg.Product.QuickviewMinimal,
		routing.RouteReviewSave:     cfg.Product.SaveReview,
		routing.RouteReviews:        cfg.Product.LoadReviews,
	}
	reviewLimit := middleware.RateLimit(cfg.ReviewRateLimit, cfg.ReviewBurst, logger)
	browserCache := middleware.CacheControl(cfg.BrowserMaxAge)

	// Storefront pages. The request transformer rewrites the routing path,
	// so it has to run on the mounted router before its routes match.
	sf := chi.NewRouter()
	sf.Use(middleware.CORS(cfg.CORS))
	sf.Use(cfg.Transformer.Middleware)
	sf.Use(middleware.Auth(cfg.TokenValidator, logger))
	sf.Use(SalesChannelContextMiddleware(cfg.Resolver, cfg.ContextTTL, logger))
	sf.Use(middleware.RequestLogger(logger))

	for _, rt := range routing.StorefrontRoutes() {
		fn, ok := handlers[rt.Name]
		if !ok {
			return nil, fmt.Errorf("no handler for route %s", rt.Name)
		}

		var h http.Handler = fn
		switch rt.Name {
		case routing.RouteDetail, routing.RouteDetailSwitch:
			if cfg.HTTPCache != nil {
				h = cfg.HTTPCache.Middleware(rt.Name)(h)
			}
			h = browserCache(h)
		case routing.RouteQuickView:
			h = browserCache(h)
		case routing.RouteReviewSave:
			h = reviewLimit(h)
		}
		// Forwards get the same route middleware as direct requests.
		cfg.Forwarder.Handle(rt.Name, h)
		for _, method := range rt.Methods {
			sf.Method(method, rt.Pattern, h)
		}
	}
	r.Mount("/", sf)

	return r, nil
}
