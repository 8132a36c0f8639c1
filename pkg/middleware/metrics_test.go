package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric returns the first metric of c whose labels include all of labels.
func collectMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		match := true
		for k, v := range labels {
			if got[k] != v {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-test"))
	r.Get("/detail/{productId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/detail/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	m := collectMetric(t, httpRequestsTotal, map[string]string{
		"service": "metrics-test", "method": "GET", "route": "/detail/{productId}", "status": "404",
	})
	require.NotNil(t, m)
	assert.Equal(t, float64(2), m.GetCounter().GetValue())

	h := collectMetric(t, httpRequestDuration, map[string]string{"service": "metrics-test", "route": "/detail/{productId}"})
	require.NotNil(t, h)
	assert.Equal(t, uint64(2), h.GetHistogram().GetSampleCount())

	g := collectMetric(t, httpRequestsInFlight, map[string]string{"service": "metrics-test"})
	require.NotNil(t, g)
	assert.Zero(t, g.GetGauge().GetValue())
}
