package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
)

// HomeHandler serves the home page, the default target of context redirects.
type HomeHandler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewHomeHandler creates a new home page handler.
func NewHomeHandler(renderer *Renderer, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{renderer: renderer, logger: logger}
}

// Index handles GET /.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := salesChannelContext(r); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.renderer.Render(w, r, tmplHome, nil)
}
