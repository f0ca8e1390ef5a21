package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/metrics"
	"github.com/ukydev/transportease/internal/middleware"
	"github.com/ukydev/transportease/internal/models"
)

// Cities handles GET /api/cities
func Cities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.MockCities())
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RouterConfig carries the dependencies of the site routes.
type RouterConfig struct {
	Auth            AuthAPI
	Catalog         Catalog
	Logger          log.FieldLogger
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	AuthRateLimiter *middleware.RateLimiter
}

// NewRouter builds the site's HTTP surface.
func NewRouter(cfg RouterConfig) *mux.Router {
	if cfg.AuthRateLimiter == nil {
		cfg.AuthRateLimiter = middleware.NewRateLimiter()
	}

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Identify, middleware.Logging(cfg.Logger), middleware.Metrics)

	r.HandleFunc("/healthz", Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cities", Cities).Methods(http.MethodGet)

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Logger)
	api.HandleFunc("/catalog/vehicles", catalogHandler.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/quote", catalogHandler.Quote).Methods(http.MethodPost)

	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Use(cfg.AuthRateLimiter.RateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow))
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login-owner", authHandler.LoginOwner).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register-owner", authHandler.RegisterOwner).Methods(http.MethodPost)

	return r
}
