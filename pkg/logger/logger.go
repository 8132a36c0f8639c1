package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	correlationIDKey  contextKey = "correlation_id"
	customerIDKey     contextKey = "customer_id"
	salesChannelIDKey contextKey = "sales_channel_id"
	loggerKey         contextKey = "logger"
)

// New creates a JSON logger for the given service writing to stdout.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(serviceName, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(slog.String("service", serviceName))
}

// ParseLevel maps a textual level to a slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCustomerID returns a new context carrying the logged-in customer id.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerIDFromContext extracts the customer id stored by WithCustomerID.
func CustomerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(customerIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSalesChannelID returns a new context carrying the resolved sales channel id.
func WithSalesChannelID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, salesChannelIDKey, id)
}

// SalesChannelIDFromContext extracts the sales channel id stored by WithSalesChannelID.
func SalesChannelIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(salesChannelIDKey).(string); ok {
		return id
	}
	return ""
}

// NewContext returns a new context with the given logger stored in it.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request-scoped logger stored in context.
// Returns slog.Default() if no logger is stored.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext returns l enriched with correlation_id, customer_id,
// sales_channel_id, trace_id and span_id when present in ctx.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With(slog.String("correlation_id", id))
	}
	if id := CustomerIDFromContext(ctx); id != "" {
		l = l.With(slog.String("customer_id", id))
	}
	if id := SalesChannelIDFromContext(ctx); id != "" {
		l = l.With(slog.String("sales_channel_id", id))
	}

	if spanCtx := trace.SpanFromContext(ctx).SpanContext(); spanCtx.IsValid() {
		l = l.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return l
}
