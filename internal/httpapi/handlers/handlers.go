package handlers

import (
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/submit"
)

type Deps struct {
	Submitter *submit.Service
	Templates submit.TemplateLoader
	Metrics   *submit.Metrics
	Log       *logger.Logger
}

type Handler struct {
	submitter *submit.Service
	templates submit.TemplateLoader
	metrics   *submit.Metrics
	log       *logger.Logger
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = logger.NewDefault()
	}
	return &Handler{
		submitter: d.Submitter,
		templates: d.Templates,
		metrics:   d.Metrics,
		log:       d.Log,
	}
}
