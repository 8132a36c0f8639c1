package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler(0)
	h.Register("postgres", func(context.Context) error { return errors.New("down") })

	code, resp := serve(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		critical   map[string]Checker
		optional   map[string]Checker
		wantCode   int
		wantStatus Status
	}{
		{"all up", map[string]Checker{"postgres": up, "redis": up}, map[string]Checker{"kafka": up}, http.StatusOK, StatusUp},
		{"optional down", map[string]Checker{"postgres": up}, map[string]Checker{"kafka": down}, http.StatusOK, StatusDegraded},
		{"critical down", map[string]Checker{"postgres": down}, map[string]Checker{"kafka": down}, http.StatusServiceUnavailable, StatusDown},
		{"no checks", nil, nil, http.StatusOK, StatusUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(time.Second)
			for name, c := range tt.critical {
				h.Register(name, c)
			}
			for name, c := range tt.optional {
				h.RegisterOptional(name, c)
			}

			code, resp := serve(t, h.ReadinessHandler())

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestCheck_RespectsTimeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Check(context.Background())

	assert.Equal(t, StatusDown, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
	assert.True(t, resp.Checks["slow"].Critical)
}
