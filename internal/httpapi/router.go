package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vodsubmit/internal/httpapi/handlers"
	"vodsubmit/internal/httpkit"
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/pkg/middleware"
	"vodsubmit/internal/submit"
)

type Deps struct {
	Submitter *submit.Service
	Templates submit.TemplateLoader
	Metrics   *submit.Metrics
	Log       *logger.Logger
	// RequestTimeout bounds a whole request; zero disables the deadline.
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.Logging(d.Log))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	// Every response carries the wildcard allow-origin, matching the
	// function-host deployment of the same handler.
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := handlers.New(handlers.Deps{
		Submitter: d.Submitter,
		Templates: d.Templates,
		Metrics:   d.Metrics,
		Log:       d.Log,
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/jobs", h.PostJob)

	return r
}
