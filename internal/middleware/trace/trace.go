// Package trace times each routed request, logs its completion and records
// it in the HTTP metrics.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	applog "fincharts/internal/log"
	"fincharts/internal/metrics"
)

// Tracer wraps route handlers. The route label is the registered pattern,
// never the raw path, so metric cardinality stays bounded.
type Tracer struct {
	logger   *applog.StructuredLogger
	metrics  *metrics.Metrics
	clientIP func(*http.Request) string
	total    atomic.Int64
}

// New builds a Tracer. clientIP may be nil, in which case RemoteAddr is
// logged.
func New(logger *applog.Logger, m *metrics.Metrics, clientIP func(*http.Request) string) *Tracer {
	if clientIP == nil {
		clientIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Tracer{
		logger:   applog.NewStructuredLogger(logger),
		metrics:  m,
		clientIP: clientIP,
	}
}

// Route returns next instrumented under the given route label.
func (t *Tracer) Route(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		t.total.Add(1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		d := time.Since(start)
		t.metrics.RecordHTTPRequest(r.Method, route, rw.statusCode, d)
		t.logger.LogHTTPEnd(r.Context(), r, rw.statusCode, d.Milliseconds(), t.clientIP(r))
	})
}

// Total is the number of requests traced so far.
func (t *Tracer) Total() int64 {
	return t.total.Load()
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
