package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"throttlelab/internal/core/services"
	httphandlers "throttlelab/internal/handlers/http"
	"throttlelab/internal/infrastructure/api"
	"throttlelab/internal/infrastructure/middleware"
	"throttlelab/internal/infrastructure/monitoring"
	"throttlelab/internal/infrastructure/repositories"
	"throttlelab/pkg/config"
	"throttlelab/pkg/logger"
	"throttlelab/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("THROTTLELAB_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Sugar().Fatalw("failed to load configuration", "path", configPath, "error", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		zap.NewExample().Sugar().Fatalw("failed to create logger", "error", err)
	}
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "throttlelab-setup",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}

	settings := repoFactory.CreateSettingsStore()
	variables := repoFactory.CreateVariablesStore()

	collector := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)

	client := api.NewExperimentClient(cfg.API.BaseURL, cfg.API.Timeout)
	activator := services.NewActivationService(settings, variables, collector, log)
	setupService := services.NewSetupService(client, activator, collector, log)
	stateService := services.NewStateService(settings, variables, log)

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddStoreCheck("settings", settings, 2*time.Second)
	healthChecker.AddStoreCheck("variables", variables, 2*time.Second)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.AccessLogMiddleware(logger.NewContextLogger(zapLogger)),
		middleware.TracingMiddleware(),
		middleware.NewHTTPRateLimitMiddleware(cfg),
		middleware.ErrorHandlerMiddleware(log),
	)

	httphandlers.NewExperimentHandler(setupService, stateService, log).SetupRoutes(router)
	httphandlers.NewHealthHandler(healthChecker).SetupRoutes(router)

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting setup server",
			"address", cfg.Server.Address,
			"storage", repoFactory.Backend(),
			"api", cfg.API.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error flushing traces", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}

	log.Info("setup server stopped")
}
