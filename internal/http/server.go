package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finbot/internal/ingest"
	applog "finbot/internal/log"
	"finbot/internal/middleware/ratelimit"
	"finbot/internal/middleware/security"
	"finbot/internal/middleware/trace"
	"finbot/internal/services"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr               string
	MaxUploadBytes     int64
	RateLimitPerMinute int // zero disables rate limiting
}

// SheetSource loads the configured spreadsheet range.
type SheetSource interface {
	Name() string
	Load(ctx context.Context) (ingest.Result, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server

	analyzer *services.Analyzer
	reports  *services.ReportService
	sheet    SheetSource
	checks   map[string]ReadinessCheck

	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	maxUpload int64
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithReports enables GET /api/reports and /api/reports/{id}.
func WithReports(rs *services.ReportService) Option {
	return func(s *Server) { s.reports = rs }
}

// WithSheetSource enables POST /api/analyze/sheet.
func WithSheetSource(src SheetSource) Option {
	return func(s *Server) { s.sheet = src }
}

// WithReadinessCheck adds a dependency to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

// NewServer builds the API server with its routes and middleware.
func NewServer(cfg Config, analyzer *services.Analyzer, logger *applog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		analyzer:  analyzer,
		checks:    map[string]ReadinessCheck{},
		logger:    logger.WithComponent(applog.ComponentHTTP),
		maxUpload: cfg.MaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reports == nil {
		s.reports = services.NewReportService(nil, nil)
	}

	s.tracer = trace.NewMiddleware(s.logger, extractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(headers.Middleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no route for " + r.URL.Path).Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RateLimitPerMinute > 0 {
				s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
				r.Use(s.limiter.Middleware(extractClientIP, s.onRateLimited))
			}
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/analyze/sheet", s.handleAnalyzeSheet)
		})
		r.Get("/reports", s.handleReports)
		r.Get("/reports/{id}", s.handleReport)
		r.Get("/goals", s.handleGoals)
	})

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Metrics returns request counters.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown stops background work and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}
