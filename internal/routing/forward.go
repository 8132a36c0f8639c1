package routing

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Forwarder dispatches a request to another named route inside the same
// process. The client sees only the response of the target.
type Forwarder struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// NewForwarder creates an empty forwarder.
func NewForwarder() *Forwarder {
	return &Forwarder{handlers: make(map[string]http.Handler)}
}

// Handle registers h as the target for route name.
func (f *Forwarder) Handle(name string, h http.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
}

// Forward serves r with the handler of route name. routeParams replace the
// URL parameters and attrs are readable through Forwarded.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, name string, attrs map[string]any, routeParams map[string]string) error {
	f.mu.RLock()
	h, ok := f.handlers[name]
	f.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}

	rctx := chi.NewRouteContext()
	for k, v := range routeParams {
		rctx.URLParams.Add(k, v)
	}

	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = WithForwarded(ctx, attrs)
	h.ServeHTTP(w, r.WithContext(ctx))
	return nil
}
