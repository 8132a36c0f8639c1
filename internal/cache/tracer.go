package cache

import (
	"context"
	"sort"
	"sync"
)

// Tracer records the dependencies a computation reads, grouped under a
// trace key, so cached results can be tagged with them.
type Tracer interface {
	// Trace runs fn with key active. Dependencies recorded while fn runs
	// are attached to key.
	Trace(ctx context.Context, key string, fn func(ctx context.Context) error) error
	// Get returns every dependency recorded under key.
	Get(key string) []string
}

// traceScope tells recorders apart in a context.
type traceScope struct{ name string }

// recorder holds dependency sets per trace key. Active keys travel in the
// context, so concurrent traces never see each other.
type recorder struct {
	scope traceScope

	mu     sync.Mutex
	traces map[string]map[string]struct{}
}

func newRecorder(name string) *recorder {
	return &recorder{scope: traceScope{name: name}, traces: make(map[string]map[string]struct{})}
}

func (r *recorder) trace(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	active, _ := ctx.Value(r.scope).([]string)
	next := make([]string, len(active), len(active)+1)
	copy(next, active)
	next = append(next, key)

	r.mu.Lock()
	if _, ok := r.traces[key]; !ok {
		r.traces[key] = make(map[string]struct{})
	}
	r.mu.Unlock()

	return fn(context.WithValue(ctx, r.scope, next))
}

func (r *recorder) record(ctx context.Context, dependency string) {
	active, _ := ctx.Value(r.scope).([]string)
	if len(active) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range active {
		set, ok := r.traces[key]
		if !ok {
			set = make(map[string]struct{})
			r.traces[key] = set
		}
		set[dependency] = struct{}{}
	}
}

func (r *recorder) get(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.traces[key]
	out := make([]string, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// ConfigTracer is the base tracer: it records system config keys read
// while a trace is active, as "config.<key>".
type ConfigTracer struct {
	rec *recorder
}

// NewConfigTracer creates an empty config tracer.
func NewConfigTracer() *ConfigTracer {
	return &ConfigTracer{rec: newRecorder("config")}
}

func (t *ConfigTracer) Trace(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return t.rec.trace(ctx, key, fn)
}

func (t *ConfigTracer) Get(key string) []string {
	return t.rec.get(key)
}

// Record notes that configKey was read under every trace active in ctx.
func (t *ConfigTracer) Record(ctx context.Context, configKey string) {
	t.rec.record(ctx, "config."+configKey)
}
