// Package main is the function-host entry point for the submitter.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"vodsubmit/internal/config"
	"vodsubmit/internal/lambdahandler"
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/repositories"
	"vodsubmit/internal/submit"
	"vodsubmit/internal/transcoder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "vodsubmit-fn",
	})

	mc, err := transcoder.New(context.Background(), cfg.Region)
	if err != nil {
		log.LogFatal("failed to initialize transcoding client", err)
	}

	metrics := submit.NewMetrics(prometheus.DefaultRegisterer)
	submitter := submit.New(submit.Params{
		Role:      cfg.MediaConvertRole,
		Templates: repositories.NewTemplateRepository(cfg.TemplatePath),
		Jobs:      mc,
		Log:       log,
		Metrics:   metrics,
	})

	h := lambdahandler.New(submitter, metrics, log)
	lambda.Start(h.Handle)
}
