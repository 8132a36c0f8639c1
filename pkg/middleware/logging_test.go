package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := RequestLogging(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(CorrelationIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(http.StatusCreated), line["status"])
	assert.Equal(t, seen, line["correlation_id"])
}

func TestRequestLogging_KeepsInboundCorrelationID(t *testing.T) {
	handler := RequestLogging(discardLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))
}

func TestRequestLogger_StoresEnrichedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := logger.WithCorrelationID(req.Context(), "corr-9")
	ctx = WithCustomerID(ctx, "cust-9")
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "corr-9", line["correlation_id"])
	assert.Equal(t, "cust-9", line["customer_id"])
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCacheControl(t *testing.T) {
	handler := CacheControl(60)(okHandler())

	tests := []struct {
		name     string
		method   string
		customer string
		want     string
	}{
		{"anonymous get", http.MethodGet, "", "public, max-age=60"},
		{"customer get", http.MethodGet, "cust-1", "private, no-store"},
		{"post", http.MethodPost, "", "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/detail/p-1", nil)
			if tt.customer != "" {
				req = req.WithContext(WithCustomerID(req.Context(), tt.customer))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}
