package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/transportease/internal/models"
)

func newTestRouter(api AuthAPI, c Catalog, limit int) http.Handler {
	logger, _ := test.NewNullLogger()
	return NewRouter(RouterConfig{
		Auth:           api,
		Catalog:        c,
		Logger:         logger,
		AuthRateLimit:  limit,
		AuthRateWindow: time.Minute,
	})
}

func TestCities(t *testing.T) {
	router := newTestRouter(new(MockAuthAPI), new(MockCatalog), 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cities", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var cities []models.City
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Equal(t, models.MockCities(), cities)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(new(MockAuthAPI), new(MockCatalog), 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "transportease_http_requests_total")
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	mockAPI := new(MockAuthAPI)
	router := newTestRouter(mockAPI, new(MockCatalog), 2)

	req := models.LoginRequest{Email: "asha@example.com", Password: "secret123"}
	mockAPI.On("Login", mock.Anything, models.RoleUser, req).
		Return(&models.AuthResponse{Token: "tok"}, nil)
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
		r.RemoteAddr = "10.0.0.9:5000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	mockAPI.AssertNumberOfCalls(t, "Login", 2)
}
