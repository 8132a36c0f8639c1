package cache

import (
	"context"
	"sort"
)

// CacheTracer decorates a Tracer so theme config reads are traced too.
type CacheTracer struct {
	decorated Tracer
	theme     *ThemeConfigAccessor
}

// NewCacheTracer wraps decorated.
func NewCacheTracer(decorated Tracer, theme *ThemeConfigAccessor) *CacheTracer {
	return &CacheTracer{decorated: decorated, theme: theme}
}

// Decorated returns the wrapped tracer.
func (t *CacheTracer) Decorated() Tracer {
	return t.decorated
}

// Trace runs fn inside a theme trace and the decorated trace of key.
func (t *CacheTracer) Trace(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return t.theme.Trace(ctx, key, func(ctx context.Context) error {
		return t.decorated.Trace(ctx, key, fn)
	})
}

// Get returns the union of the theme trace and the decorated trace of key,
// without duplicates.
func (t *CacheTracer) Get(key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{t.theme.GetTrace(key), t.decorated.Get(key)} {
		for _, dep := range list {
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			out = append(out, dep)
		}
	}
	sort.Strings(out)
	return out
}
