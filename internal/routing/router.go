package routing

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Route name errors. Both are client errors because route names and
// parameters reach Generate from form fields.
var (
	ErrRouteNotFound         = fmt.Errorf("route not found: %w", apperrors.ErrInvalidInput)
	ErrMissingRouteParameter = fmt.Errorf("missing route parameter: %w", apperrors.ErrInvalidInput)
)

// ReferenceType selects the form of a generated URL.
type ReferenceType int

const (
	// AbsolutePath yields "/base/path?query".
	AbsolutePath ReferenceType = iota
	// AbsoluteURL yields "scheme://host[:port]/base/path?query".
	AbsoluteURL
)

// Route is a named storefront route. Pattern uses chi syntax.
type Route struct {
	Name    string
	Methods []string
	Pattern string
}

// Router is the immutable table of named routes. It is shared by all
// requests; per-request state lives in Context.
type Router struct {
	routes map[string]Route
	names  []string
}

// NewRouter builds a router from routes. Names must be unique.
func NewRouter(routes ...Route) (*Router, error) {
	r := &Router{routes: make(map[string]Route, len(routes))}
	for _, rt := range routes {
		if rt.Name == "" || rt.Pattern == "" {
			return nil, fmt.Errorf("route %q: name and pattern are required", rt.Name)
		}
		if _, dup := r.routes[rt.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", rt.Name)
		}
		r.routes[rt.Name] = rt
		r.names = append(r.names, rt.Name)
	}
	return r, nil
}

// Route looks up a route by name.
func (r *Router) Route(name string) (Route, bool) {
	rt, ok := r.routes[name]
	return rt, ok
}

// Routes returns all routes in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.routes[n])
	}
	return out
}

// PathInfo renders the route path for params without base URL. Parameters
// that are not part of the pattern become the query string, sorted by key.
func (r *Router) PathInfo(name string, params map[string]any) (string, error) {
	rt, ok := r.routes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}

	used := make(map[string]bool)
	var b strings.Builder
	pattern := rt.Pattern
	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			b.WriteString(pattern)
			break
		}
		end := strings.IndexByte(pattern[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("route %s: unterminated parameter in %q", name, rt.Pattern)
		}
		end += open

		key := pattern[open+1 : end]
		if i := strings.IndexByte(key, ':'); i >= 0 {
			key = key[:i]
		}
		v, ok := params[key]
		s := formatParam(v)
		if !ok || s == "" {
			return "", fmt.Errorf("%w: %q for route %s", ErrMissingRouteParameter, key, name)
		}
		used[key] = true

		b.WriteString(pattern[:open])
		b.WriteString(url.PathEscape(s))
		pattern = pattern[end+1:]
	}

	path := b.String()
	if q := queryString(params, used); q != "" {
		path += "?" + q
	}
	return path, nil
}

// Generate builds the URL of route name under rc.
func (r *Router) Generate(rc Context, name string, params map[string]any, ref ReferenceType) (string, error) {
	path, err := r.PathInfo(name, params)
	if err != nil {
		return "", err
	}
	if ref == AbsoluteURL {
		return rc.Origin() + rc.BaseURL + path, nil
	}
	return rc.BaseURL + path, nil
}

func queryString(params map[string]any, used map[string]bool) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if used[k] || v == nil {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case []any:
			for _, item := range v {
				q.Add(k+"[]", formatParam(item))
			}
		case []string:
			for _, item := range v {
				q.Add(k+"[]", item)
			}
		default:
			q.Set(k, formatParam(v))
		}
	}
	return q.Encode()
}

// formatParam stringifies a route parameter. JSON numbers arrive as float64.
func formatParam(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}
