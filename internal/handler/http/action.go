package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/httputil"
)

// forwardParameters carries the route parameters of a forwardTo target.
const forwardParameters = "forwardParameters"

// ActionResponder answers storefront form posts: redirect, internal forward
// or a plain success body.
type ActionResponder struct {
	router    *routing.Router
	forwarder *routing.Forwarder
	logger    *slog.Logger
}

// NewActionResponder creates a responder generating URLs with router.
func NewActionResponder(router *routing.Router, forwarder *routing.Forwarder, logger *slog.Logger) *ActionResponder {
	return &ActionResponder{
		router:    router,
		forwarder: forwarder,
		logger:    logger,
	}
}

// Respond redirects to redirectTo with redirectParameters when given,
// forwards to forwardTo when given and answers {"success": true} otherwise.
func (a *ActionResponder) Respond(w http.ResponseWriter, r *http.Request) {
	if route := r.FormValue(domain.ParamRedirectTo); route != "" {
		a.RedirectToRoute(w, r, route, formParams(r, domain.ParamRedirectParameters))
		return
	}
	if route := r.FormValue(domain.ParamForwardTo); route != "" {
		a.ForwardToRoute(w, r, route, nil, stringParams(formParams(r, forwardParameters)))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RedirectToRoute answers with a 302 to the path of route.
func (a *ActionResponder) RedirectToRoute(w http.ResponseWriter, r *http.Request, route string, params map[string]any) {
	target, err := a.router.Generate(routing.ContextFromRequest(r), route, params, routing.AbsolutePath)
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}
	httputil.Redirect(w, r, target)
}

// ForwardToRoute serves r with the handler of route.
func (a *ActionResponder) ForwardToRoute(w http.ResponseWriter, r *http.Request, route string, attrs map[string]any, routeParams map[string]string) {
	if err := a.forwarder.Forward(w, r, route, attrs, routeParams); err != nil {
		httputil.WriteError(w, r, err, a.logger)
	}
}

// formParams reads key either as a JSON object or as bracketed form fields
// (key[name]=value). Anything else yields an empty map.
func formParams(r *http.Request, key string) map[string]any {
	if raw := r.FormValue(key); raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil || decoded == nil {
			return map[string]any{}
		}
		return decoded
	}

	params := map[string]any{}
	prefix := key + "["
	for k, values := range r.Form {
		if len(values) == 0 || !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "]") {
			continue
		}
		params[k[len(prefix):len(k)-1]] = values[0]
	}
	return params
}

func stringParams(params map[string]any) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
