package cache

import (
	"context"
	"fmt"
	"sync"
)

// ThemeConfigSource loads the resolved theme configuration of a sales channel.
type ThemeConfigSource interface {
	ThemeConfig(ctx context.Context, salesChannelID string) (map[string]any, error)
}

// ThemeConfigAccessor serves theme config values and records which of them
// were read while a trace was active, as "theme.<key>".
type ThemeConfigAccessor struct {
	source ThemeConfigSource
	rec    *recorder

	mu     sync.RWMutex
	values map[string]map[string]any
}

// NewThemeConfigAccessor creates an accessor caching values per sales channel.
func NewThemeConfigAccessor(source ThemeConfigSource) *ThemeConfigAccessor {
	return &ThemeConfigAccessor{
		source: source,
		rec:    newRecorder("theme"),
		values: make(map[string]map[string]any),
	}
}

// Get returns the theme value key for the sales channel, or nil when unset.
func (a *ThemeConfigAccessor) Get(ctx context.Context, salesChannelID, key string) (any, error) {
	a.rec.record(ctx, ThemeTag(key))

	a.mu.RLock()
	cfg, ok := a.values[salesChannelID]
	a.mu.RUnlock()

	if !ok {
		loaded, err := a.source.ThemeConfig(ctx, salesChannelID)
		if err != nil {
			return nil, fmt.Errorf("load theme config: %w", err)
		}
		if loaded == nil {
			loaded = map[string]any{}
		}
		a.mu.Lock()
		a.values[salesChannelID] = loaded
		a.mu.Unlock()
		cfg = loaded
	}

	return cfg[key], nil
}

// Trace runs fn recording theme reads under key.
func (a *ThemeConfigAccessor) Trace(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return a.rec.trace(ctx, key, fn)
}

// GetTrace returns the theme keys read under key.
func (a *ThemeConfigAccessor) GetTrace(key string) []string {
	return a.rec.get(key)
}

// Invalidate drops the cached values of a sales channel; all of them when
// salesChannelID is empty.
func (a *ThemeConfigAccessor) Invalidate(salesChannelID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if salesChannelID == "" {
		a.values = make(map[string]map[string]any)
		return
	}
	delete(a.values, salesChannelID)
}
