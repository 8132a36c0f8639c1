package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ContextHandler handles the context switch endpoints.
type ContextHandler struct {
	switcher ContextSwitcher
	router   *routing.Router
	actions  *ActionResponder
	logger   *slog.Logger
}

// NewContextHandler creates a new context switch handler.
func NewContextHandler(switcher ContextSwitcher, router *routing.Router, actions *ActionResponder, logger *slog.Logger) *ContextHandler {
	return &ContextHandler{
		switcher: switcher,
		router:   router,
		actions:  actions,
		logger:   logger,
	}
}

// Configure handles POST /checkout/configure. Every submitted field goes to
// the switcher as is.
func (h *ContextHandler) Configure(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed form body"), h.logger)
		return
	}

	data := make(domain.ContextSwitch, len(r.PostForm))
	for k, values := range r.PostForm {
		if len(values) > 0 {
			data[k] = values[0]
		}
	}

	if _, err := h.switcher.Switch(r.Context(), sc, data); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.actions.Respond(w, r)
}

// SwitchLanguage handles POST /checkout/language.
func (h *ContextHandler) SwitchLanguage(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed form body"), h.logger)
		return
	}

	if !r.PostForm.Has(domain.ParamLanguageID) {
		httputil.WriteError(w, r, apperrors.MissingParameter(domain.ParamLanguageID), h.logger)
		return
	}
	languageID := r.PostForm.Get(domain.ParamLanguageID)

	result, err := h.switcher.Switch(r.Context(), sc, domain.ContextSwitch{domain.ParamLanguageID: languageID})
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			err = apperrors.LanguageNotFound(languageID)
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	route := r.PostForm.Get(domain.ParamRedirectTo)
	if route == "" {
		route = routing.RouteHome
	}
	params := formParams(r, domain.ParamRedirectParameters)

	if result.RedirectURL == "" {
		h.actions.RedirectToRoute(w, r, route, params)
		return
	}

	target, err := url.Parse(result.RedirectURL)
	if err != nil || target.Hostname() == "" {
		httputil.WriteError(w, r, apperrors.LanguageNotFound(languageID), h.logger)
		return
	}

	// The new domain brings its own base URL, so the one resolved for this
	// request must not leak into the generated URL.
	if attrs, ok := routing.AttributesFromContext(r.Context()); ok {
		attrs.BaseURL = ""
		r = r.WithContext(routing.WithAttributes(r.Context(), attrs))
	}

	rc := routing.ContextFromRequest(r).WithTarget(target)
	location, err := h.router.Generate(rc, route, params, routing.AbsoluteURL)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.Redirect(w, r, location)
}
