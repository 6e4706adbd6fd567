package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"vodsubmit/internal/config"
	"vodsubmit/internal/httpapi"
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/pkg/shutdown"
	"vodsubmit/internal/repositories"
	"vodsubmit/internal/submit"
	"vodsubmit/internal/transcoder"
)

func main() {
	// .env is optional, real deployments configure the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "vodsubmit-api",
	})

	log.Info("starting vodsubmit API",
		"version", "0.1.0",
		"region", cfg.Region,
		"template", cfg.TemplatePath,
	)

	ctx := context.Background()

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	templates := repositories.NewTemplateRepository(cfg.TemplatePath)
	if _, err := templates.Load(); err != nil {
		log.LogFatal("job template unusable", err, "path", cfg.TemplatePath)
	}
	log.Info("job template validated", "path", cfg.TemplatePath)

	mc, err := transcoder.New(ctx, cfg.Region)
	if err != nil {
		log.LogFatal("failed to initialize transcoding client", err)
	}

	metrics := submit.NewMetrics(prometheus.DefaultRegisterer)
	submitter := submit.New(submit.Params{
		Role:      cfg.MediaConvertRole,
		Templates: templates,
		Jobs:      mc,
		Log:       log,
		Metrics:   metrics,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Submitter:      submitter,
		Templates:      templates,
		Metrics:        metrics,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.HTTPPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
