package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	applog "fincharts/internal/log"
	"fincharts/internal/metrics"
	"fincharts/internal/middleware/ratelimit"
	"fincharts/internal/middleware/security"
	"fincharts/internal/middleware/trace"
	"fincharts/internal/services"
	"fincharts/internal/view"
)

// Server exposes one ledger session over HTTP.
type Server struct {
	http.Server

	session  *view.Session
	ledger   *services.LedgerService
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Tracer
	logger   *applog.Logger
	validate *validator.Validate
	ready    func(context.Context) error

	shutdownOnce sync.Once
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithRateLimiter limits POST requests per client IP. The server stops the
// limiter on Shutdown.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(fn func(context.Context) error) Option {
	return func(s *Server) { s.ready = fn }
}

func NewServer(addr string, session *view.Session, svc *services.LedgerService, opts ...Option) *Server {
	s := &Server{
		session:  session,
		ledger:   svc,
		detector: security.NewDetector(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	s.tracer = trace.New(s.logger, s.metrics, s.detector.ClientIP)

	mux := http.NewServeMux()
	s.route(mux, "GET /healthz", handleHealth)
	s.route(mux, "GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.route(mux, "GET /api/catalog", s.handleCatalog)
	s.route(mux, "GET /api/charts", s.handleCharts)
	s.route(mux, "GET /api/editor", s.handleEditorState)
	s.route(mux, "GET /api/form", s.handleForm)
	s.route(mux, "GET /api/settings", s.handleGetSettings)

	s.route(mux, "POST /api/refresh", s.post(s.handleRefresh))
	s.route(mux, "POST /api/editor/open", s.post(s.handleEditorOpen))
	s.route(mux, "POST /api/editor/select", s.post(s.handleEditorSelect))
	s.route(mux, "POST /api/editor/close", s.post(s.handleEditorClose))
	s.route(mux, "POST /api/cells", s.post(s.handleCell))
	s.route(mux, "POST /api/budget", s.post(s.handleBudget))
	s.route(mux, "POST /api/commit", s.post(s.handleCommit))
	s.route(mux, "POST /api/settings", s.post(s.handleSaveSettings))

	var h http.Handler = mux
	h = s.rejectSuspicious(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = applog.RequestIDMiddleware(h)
	h = applog.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// route registers h under pattern, traced with the path part as its label.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	label := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		label = path
	}
	mux.Handle(pattern, s.tracer.Route(label, h))
}

// post bounds the body size and applies the rate limiter.
func (s *Server) post(next http.HandlerFunc) http.HandlerFunc {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next(w, r)
	})
	if s.limiter != nil {
		h = s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, s.detector.ClientIP(r),
				applog.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		})(h)
	}
	return h.ServeHTTP
}

func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, bad := s.detector.Suspicious(r); bad {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request rejected",
				"reason", reason,
				applog.FieldClientIP, s.detector.ClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			NotFoundError("Not found").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter and drains open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
