package routing

import "context"

type contextKey string

const (
	attributesKey contextKey = "routing_attributes"
	forwardedKey  contextKey = "routing_forwarded"
)

// Attributes are the sales channel values resolved for a request.
type Attributes struct {
	SalesChannelID  string
	DomainID        string
	LanguageID      string
	CurrencyID      string
	SnippetSetID    string
	Locale          string
	BaseURL         string
	AbsoluteBaseURL string
	OriginalPath    string
}

// Host is the absolute base URL followed by the base URL, the prefix of
// every URL of the current domain.
func (a Attributes) Host() string {
	return a.AbsoluteBaseURL + a.BaseURL
}

// WithAttributes stores a in ctx.
func WithAttributes(ctx context.Context, a Attributes) context.Context {
	return context.WithValue(ctx, attributesKey, a)
}

// AttributesFromContext returns the attributes stored by WithAttributes.
func AttributesFromContext(ctx context.Context) (Attributes, bool) {
	a, ok := ctx.Value(attributesKey).(Attributes)
	return a, ok
}

// WithForwarded stores the attributes of an internal forward in ctx.
func WithForwarded(ctx context.Context, attrs map[string]any) context.Context {
	return context.WithValue(ctx, forwardedKey, attrs)
}

// Forwarded returns the attribute key of the current forward, if any.
func Forwarded(ctx context.Context, key string) (any, bool) {
	attrs, ok := ctx.Value(forwardedKey).(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := attrs[key]
	return v, ok
}
