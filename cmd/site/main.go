// Command site serves the TransportEase marketplace API used by the web
// pages: city list, vehicle browsing, the trip cost calculator and the auth
// forms, all backed by the rental API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/catalog"
	"github.com/ukydev/transportease/internal/client"
	"github.com/ukydev/transportease/internal/config"
	"github.com/ukydev/transportease/internal/db"
	"github.com/ukydev/transportease/internal/handlers"
	"github.com/ukydev/transportease/internal/middleware"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnvFiles()
	v := config.New()
	v.SetDefault("log_format", "json")
	cfg, err := config.Load(v)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Site server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	api := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger))

	mirror, closeMirror, err := openMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeMirror()

	limiter := middleware.NewRateLimiter(cfg.TrustedProxies...)
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:            api,
		Catalog:         catalog.NewService(api, mirror, logger),
		Logger:          logger,
		AuthRateLimit:   cfg.AuthRateLimit,
		AuthRateWindow:  cfg.AuthRateWindow,
		AuthRateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.SiteAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(log.Fields{
			"addr":    cfg.SiteAddr,
			"api_url": cfg.APIBaseURL,
			"mirror":  mirror != nil,
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.AuthRateWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				limiter.Sweep(cfg.AuthRateWindow)
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openMirror connects the MongoDB catalog mirror when MONGO_URI is set.
// The returned collection is nil otherwise.
func openMirror(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (db.VehicleCollection, func(), error) {
	if cfg.MongoURI == "" {
		logger.Info("MONGO_URI not set, catalog mirror disabled")
		return nil, func() {}, nil
	}

	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}

	coll := db.NewMongoCollection(mongoClient, cfg.MongoDB)
	if err := coll.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB catalog mirror")
	return coll, closeFn, nil
}
