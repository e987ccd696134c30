package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/profiles", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	CORS(cfg)(okHandler).ServeHTTP(rr, req)
	return rr
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	rr := corsRequest(CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodGet, "https://app.example.com")

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	rr := corsRequest(DefaultCORSConfig(), http.MethodGet, "https://app.example.com")

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_AllowList(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true}

	allowed := corsRequest(cfg, http.MethodGet, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))

	rejected := corsRequest(cfg, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, rejected.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rejected.Code)

	none := corsRequest(cfg, http.MethodGet, "")
	assert.Empty(t, none.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightReturns204(t *testing.T) {
	rr := corsRequest(DefaultCORSConfig(), http.MethodOptions, "https://app.example.com")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DefaultsFillEmptyFields(t *testing.T) {
	rr := corsRequest(CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 60}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "60", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Header().Get("Access-Control-Expose-Headers"))
}
