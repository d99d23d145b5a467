// Package httpapi serves the scanner over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/engine"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// ResultReader returns stored scans by id.
type ResultReader interface {
	Get(id string) (*models.ScanResult, error)
}

// FixCoder drafts remediation code for a free-text prompt.
type FixCoder interface {
	GenerateFixCode(ctx context.Context, prompt string) (string, error)
}

// Deps is everything the router needs. Fixer may be nil.
type Deps struct {
	Engine   engine.Engine
	Provider common.AWSClientProvider
	Results  ResultReader
	Fixer    FixCoder
	Keys     *KeyPair
	Logger   *zap.Logger

	// CORSOrigins lists the allowed browser origins.
	CORSOrigins []string

	// Regions and Summarize are applied to every scan the API starts.
	Regions   []string
	Summarize bool
}

type Router struct {
	deps   Deps
	logger *zap.Logger
}

// NewRouter returns the HTTP handler of the API.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := &Router{deps: d, logger: d.Logger}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(r.accessLog)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/check-aws-info", r.wrap(r.handleCheckAccount))
		rt.Post("/run-security-checks", r.wrap(r.handleRunChecks))
		rt.Get("/get-security-results/{scanId}", r.wrap(r.handleGetResults))
		rt.Get("/get-public-key", r.wrap(r.handlePublicKey))
		rt.Post("/generate-fix-code", r.wrap(r.handleFixCode))
	})

	return mux
}
