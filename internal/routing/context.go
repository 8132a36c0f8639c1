package routing

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Context is the request information URLs are generated against. It is a
// value: overriding it for one URL never affects other requests.
type Context struct {
	Method    string
	Scheme    string
	Host      string
	HTTPPort  int
	HTTPSPort int
	BaseURL   string
}

// NewContext returns the defaults used when no request is available.
func NewContext() Context {
	return Context{
		Method:    http.MethodGet,
		Scheme:    "http",
		Host:      "localhost",
		HTTPPort:  80,
		HTTPSPort: 443,
	}
}

// ContextFromRequest derives the generation context of r. The base URL is
// taken from the sales channel attributes when present.
func ContextFromRequest(r *http.Request) Context {
	rc := NewContext()
	rc.Method = r.Method

	switch {
	case r.Header.Get("X-Forwarded-Proto") != "":
		rc.Scheme = strings.ToLower(r.Header.Get("X-Forwarded-Proto"))
	case r.TLS != nil:
		rc.Scheme = "https"
	}

	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	if host != "" {
		rc.Host = host
	}
	if p, err := strconv.Atoi(port); err == nil {
		if rc.Scheme == "https" {
			rc.HTTPSPort = p
		} else {
			rc.HTTPPort = p
		}
	}

	if attrs, ok := AttributesFromContext(r.Context()); ok {
		rc.BaseURL = attrs.BaseURL
	}
	return rc
}

// WithTarget returns a copy of c pointing at target: host and scheme of the
// target, its port (the scheme default when absent), method GET and the
// target path without trailing slash as base URL.
func (c Context) WithTarget(target *url.URL) Context {
	out := c
	out.Method = http.MethodGet
	out.Host = target.Hostname()
	if target.Scheme != "" {
		out.Scheme = strings.ToLower(target.Scheme)
	}

	out.HTTPPort = 80
	out.HTTPSPort = 443
	if p, err := strconv.Atoi(target.Port()); err == nil {
		out.HTTPPort = p
		if out.Scheme == "https" {
			out.HTTPSPort = p
		}
	}

	out.BaseURL = strings.TrimRight(target.Path, "/")
	return out
}

// Origin renders scheme://host[:port], omitting the default port.
func (c Context) Origin() string {
	port := c.HTTPPort
	def := 80
	if c.Scheme == "https" {
		port, def = c.HTTPSPort, 443
	}

	host := c.Host
	if port != 0 && port != def {
		host = net.JoinHostPort(host, strconv.Itoa(port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return c.Scheme + "://" + host
}
