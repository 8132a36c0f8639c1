package cache

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_cache_requests_total",
		Help: "HTTP page cache lookups by route and result (hit, miss, bypass).",
	}, []string{"route", "result"})

	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_http_cache_invalidated_entries_total",
		Help: "Cached pages removed by tag invalidation.",
	})
)

// Entry is a stored page.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Store persists pages and the tags they depend on.
type Store interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration, tags []string) error
	// Invalidate removes every page tagged with any of tags.
	Invalidate(ctx context.Context, tags ...string) (int, error)
}

// Variation returns the request state a cached page differs by, e.g. the
// language and currency of the visitor.
type Variation func(r *http.Request) string

// HTTPCache serves anonymous GET pages from a Store. Pages are tagged with
// the dependencies the tracer recorded while rendering them.
type HTTPCache struct {
	store     Store
	tracer    Tracer
	ttl       time.Duration
	variation Variation
	logger    *slog.Logger
}

// NewHTTPCache creates a page cache storing pages for ttl.
func NewHTTPCache(store Store, tracer Tracer, ttl time.Duration, variation Variation, l *slog.Logger) *HTTPCache {
	if variation == nil {
		variation = func(*http.Request) string { return "" }
	}
	return &HTTPCache{store: store, tracer: tracer, ttl: ttl, variation: variation, logger: l}
}

// Middleware caches the responses of route.
func (c *HTTPCache) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || middleware.CustomerIDFromContext(r.Context()) != "" {
				cacheRequests.WithLabelValues(route, "bypass").Inc()
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := c.key(route, r)

			entry, err := c.store.Get(ctx, key)
			if err != nil {
				logger.FromContext(ctx).WarnContext(ctx, "http cache lookup failed",
					slog.String("route", route),
					slog.String("error", err.Error()),
				)
			}
			if entry != nil {
				cacheRequests.WithLabelValues(route, "hit").Inc()
				writeEntry(w, entry, "HIT")
				return
			}
			cacheRequests.WithLabelValues(route, "miss").Inc()

			buf := newBufferedResponse()
			traceKey := c.traceKey(route, r)
			extra := &pageTags{}
			_ = c.tracer.Trace(ctx, traceKey, func(ctx context.Context) error {
				next.ServeHTTP(buf, r.WithContext(context.WithValue(ctx, pageTagsKey{}, extra)))
				return nil
			})

			entry = &Entry{Status: buf.status, Header: buf.header, Body: buf.body.Bytes(), StoredAt: time.Now().UTC()}
			if buf.status == http.StatusOK {
				tags := append(c.tags(route, traceKey, r), extra.list()...)
				if err := c.store.Set(ctx, key, entry, c.ttl, tags); err != nil {
					logger.FromContext(ctx).WarnContext(ctx, "http cache store failed",
						slog.String("route", route),
						slog.String("error", err.Error()),
					)
				}
			}
			writeEntry(w, entry, "MISS")
		})
	}
}

// Invalidate drops every page tagged with any of tags.
func (c *HTTPCache) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	n, err := c.store.Invalidate(ctx, tags...)
	if err != nil {
		return err
	}
	cacheInvalidations.Add(float64(n))
	c.logger.InfoContext(ctx, "http cache invalidated",
		slog.Any("tags", tags),
		slog.Int("entries", n),
	)
	return nil
}

func (c *HTTPCache) key(route string, r *http.Request) string {
	path := r.URL.Path
	if attrs, ok := routing.AttributesFromContext(r.Context()); ok && attrs.OriginalPath != "" {
		path = attrs.OriginalPath
	}
	raw := route + "|" + r.Host + "|" + path + "?" + r.URL.Query().Encode() + "|" + c.variation(r)
	return "http-cache-" + strconv.FormatUint(xxhash.Sum64String(raw), 16)
}

// traceKey groups traces by route and sales channel, which keeps the
// number of trace keys bounded.
func (c *HTTPCache) traceKey(route string, r *http.Request) string {
	attrs, _ := routing.AttributesFromContext(r.Context())
	return route + "-" + attrs.SalesChannelID
}

func (c *HTTPCache) tags(route, traceKey string, r *http.Request) []string {
	tags := append([]string{"route." + route}, c.tracer.Get(traceKey)...)
	if id := chi.URLParam(r, "productId"); id != "" {
		tags = append(tags, ProductTag(id))
	}
	return tags
}

type pageTagsKey struct{}

// pageTags collects tags a handler adds while its page is rendered.
type pageTags struct {
	mu   sync.Mutex
	tags []string
}

func (p *pageTags) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tags
}

// AddTags attaches tags to the page being cached for ctx. Outside a cached
// render it does nothing.
func AddTags(ctx context.Context, tags ...string) {
	p, ok := ctx.Value(pageTagsKey{}).(*pageTags)
	if !ok {
		return
	}
	p.mu.Lock()
	p.tags = append(p.tags, tags...)
	p.mu.Unlock()
}

// ProductTag is the tag of every page showing product id.
func ProductTag(id string) string {
	return "product." + id
}

// ConfigTag is the tag of every page that read system config key.
func ConfigTag(key string) string {
	return "config." + key
}

// ThemeTag is the tag of every page that read theme config key.
func ThemeTag(key string) string {
	return "theme." + key
}

func writeEntry(w http.ResponseWriter, e *Entry, result string) {
	for k, values := range e.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("X-Cache", result)
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}

// bufferedResponse collects a response so it can be stored before it is sent.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) { b.status = status }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }
