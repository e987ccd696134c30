package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func counterValue(c *prometheus.CounterVec, labels ...string) float64 {
	var m dto.Metric
	if err := c.WithLabelValues(labels...).Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(g *prometheus.GaugeVec, labels ...string) float64 {
	var m dto.Metric
	if err := g.WithLabelValues(labels...).Write(&m); err != nil {
		return -1
	}
	return m.GetGauge().GetValue()
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	const svc = "metrics-route-test"

	r := chi.NewRouter()
	r.Use(PrometheusMetrics(svc))
	r.Get("/api/profiles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/profiles/"+id, nil))
	}

	assert.Equal(t, 3.0, counterValue(httpRequestsTotal, svc, http.MethodGet, "/api/profiles/{id}", "404"))
}

func TestPrometheusMetrics_DefaultStatusIs200(t *testing.T) {
	const svc = "metrics-default-status"

	r := chi.NewRouter()
	r.Use(PrometheusMetrics(svc))
	r.Get("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, 1.0, counterValue(httpRequestsTotal, svc, http.MethodGet, "/api/stats", "200"))
	assert.Equal(t, 0.0, gaugeValue(httpRequestsInFlight, svc))
}

func TestPrometheusMetrics_UnknownRoute(t *testing.T) {
	const svc = "metrics-unknown"

	h := PrometheusMetrics(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, counterValue(httpRequestsTotal, svc, http.MethodGet, "unknown", "418"))
}

func TestStatusRecorder_ReusesExistingRecorder(t *testing.T) {
	inner := newStatusRecorder(httptest.NewRecorder())
	assert.Same(t, inner, newStatusRecorder(inner))

	inner.WriteHeader(http.StatusCreated)
	inner.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusCreated, inner.status)
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	_, _, err := newStatusRecorder(httptest.NewRecorder()).Hijack()
	assert.Error(t, err)
}
