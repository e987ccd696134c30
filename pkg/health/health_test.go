package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, hf http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	hf.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", func(ctx context.Context) error { return fmt.Errorf("down") })

	rec, resp := serve(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", func(ctx context.Context) error { return nil })
	h.RegisterNonCritical("kafka", func(ctx context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.True(t, resp.Checks["postgres"].Critical)
	assert.False(t, resp.Checks["kafka"].Critical)
}

func TestReadinessHandler_CriticalDown(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("redis", func(ctx context.Context) error { return fmt.Errorf("connection refused") })
	h.RegisterNonCritical("kafka", func(ctx context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
}

func TestReadinessHandler_NonCriticalDownIsDegraded(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", func(ctx context.Context) error { return nil })
	h.RegisterNonCritical("kafka", func(ctx context.Context) error { return fmt.Errorf("no brokers") })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	rec, resp := serve(t, NewHandler().ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}
