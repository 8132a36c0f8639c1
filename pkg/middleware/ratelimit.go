package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore keeps one token bucket per client key and evicts idle ones.
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func newVisitorStore(rps float64, burst int, ttl time.Duration) *visitorStore {
	return &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *visitorStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = s.now()
	return v.limiter
}

func (s *visitorStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, key)
		}
	}
}

func (s *visitorStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// RateLimit enforces a per-client token bucket. Logged-in customers are keyed
// by customer id, guests by client IP. Exceeding the bucket answers 429.
// Idle buckets are evicted on the request path once per ttl.
func RateLimit(rps float64, burst int, l *slog.Logger) func(http.Handler) http.Handler {
	const ttl = 3 * time.Minute
	store := newVisitorStore(rps, burst, ttl)

	var (
		mu        sync.Mutex
		lastSweep = store.now()
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			if store.now().Sub(lastSweep) > ttl {
				lastSweep = store.now()
				mu.Unlock()
				store.cleanup()
			} else {
				mu.Unlock()
			}

			key := CustomerIDFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}

			if !store.get(key).Allow() {
				l.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, &apperrors.AppError{
					Code:    "RATE_LIMITED",
					Message: "too many requests",
					Status:  http.StatusTooManyRequests,
				}, l)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the first valid address of X-Forwarded-For, then X-Real-IP,
// then the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(r.Header.Get("X-Real-IP")); ip != nil {
		return ip.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
