package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/admin-records/internal/config"
	canonicalHandler "github.com/jwalitptl/admin-records/internal/handler/canonical"
	"github.com/jwalitptl/admin-records/internal/handler/health"
	promHandler "github.com/jwalitptl/admin-records/internal/handler/prometheus"
	"github.com/jwalitptl/admin-records/internal/middleware"
	"github.com/jwalitptl/admin-records/internal/router"
	canonicalService "github.com/jwalitptl/admin-records/internal/service/canonical"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
	"github.com/jwalitptl/admin-records/pkg/validator"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level := logger.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)
	if !cfg.Log.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})

	m := metrics.NewMetrics(cfg.Metrics.Namespace, "canonical")

	svc := canonicalService.NewService(canonicalService.Config{
		Concurrency: cfg.Canonical.Concurrency,
		MaxBatch:    cfg.Canonical.MaxBatch,
	}, appLogger, m)

	entities := make([]string, len(canonicalService.Entities))
	for i, e := range canonicalService.Entities {
		entities[i] = string(e)
	}
	healthH := health.NewHandler(entities)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins

	r := router.NewRouter(
		healthH,
		promHandler.New(prometheus.DefaultGatherer, m),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			CORSConfig:       cors,
			Compress:         cfg.Server.Compress,
			HSTS:             cfg.Server.HSTS,
			MetricsPath:      metricsPath,
		},
		canonicalHandler.NewHandler(svc, validator.New()),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	healthH.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
