// Package web serves the HTML pages and the JSON API.
package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yasserelgammal/rate-limiter/limiter"
	ratestore "github.com/yasserelgammal/rate-limiter/store"
	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/config"
	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
)

// Options configure a Server. Zero values fall back to config.Default().
type Options struct {
	Plot         config.PlotConfig
	MaxBodyBytes int64
	RateLimit    config.RateLimit
	// Registry receives the HTTP and validation metrics. nil means a
	// private registry.
	Registry *prometheus.Registry
}

type Server struct {
	functions *function.Service
	explorer  *explore.Explorer
	plot      config.PlotConfig
	maxBody   int64
	limiter   *limiter.TokenBucket
	registry  *prometheus.Registry
	metrics   *metrics
	pages     map[string]*template.Template
	logger    *zap.Logger
}

func NewServer(functions *function.Service, explorer *explore.Explorer, opts Options, logger *zap.Logger) (*Server, error) {
	if functions == nil || explorer == nil {
		return nil, errors.New("web: function service and explorer are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := config.Default()
	if opts.Plot.Points == 0 {
		opts.Plot = defaults.Plot
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(opts.Registry)
	if err != nil {
		return nil, err
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		functions: functions,
		explorer:  explorer,
		plot:      opts.Plot,
		maxBody:   opts.MaxBodyBytes,
		registry:  opts.Registry,
		metrics:   m,
		pages:     pages,
		logger:    logger.With(zap.String("component", "web")),
	}
	if opts.RateLimit.PerSecond > 0 {
		s.limiter, err = limiter.NewTokenBucket(
			limiter.Config{
				Rate:     int64(opts.RateLimit.PerSecond),
				Duration: time.Second,
				Burst:    int64(opts.RateLimit.Burst),
			},
			ratestore.NewMemoryStore(time.Minute),
		)
		if err != nil {
			return nil, fmt.Errorf("web: rate limiter: %w", err)
		}
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// HTML
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleCreate)
	mux.HandleFunc("GET /functions/{id}", s.handleDetail)
	mux.HandleFunc("POST /functions/{id}", s.handleEvaluate)
	mux.HandleFunc("POST /functions/{id}/delete", s.handleDelete)

	// JSON
	mux.HandleFunc("GET /api/functions", s.apiList)
	mux.HandleFunc("POST /api/functions", s.apiCreate)
	mux.HandleFunc("GET /api/functions/{id}", s.apiGet)
	mux.HandleFunc("DELETE /api/functions/{id}", s.apiDelete)
	mux.HandleFunc("POST /api/functions/{id}/evaluate", s.apiEvaluate)
	mux.HandleFunc("GET /api/functions/{id}/limits/{x}/{y}", s.apiLimit)
	mux.HandleFunc("POST /api/tool", s.apiTool)
	mux.HandleFunc("GET /api/schema", s.apiSchema)

	// Operational
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	var h http.Handler = mux
	h = s.throttle(h)
	h = s.limitBody(h)
	h = s.recoverPanics(h)
	h = s.logRequests(h)
	h = s.requestID(h)
	return h
}

// HTTPServer applies the configured timeouts to h.
func HTTPServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:       time.Duration(cfg.IdleTimeoutMs) * time.Millisecond,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
