package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	applog "fincharts/internal/log"
	"fincharts/internal/metrics"
)

func TestRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Output: &buf})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	tr := New(logger, m, func(*http.Request) string { return "198.51.100.4" })

	h := tr.Route("/api/cells", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.WriteHeader(http.StatusOK) // ignored by net/http, must not change the label
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/cells?x=1", nil))

	if tr.Total() != 1 {
		t.Errorf("Total() = %d", tr.Total())
	}

	logged := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=400", "client_ip=198.51.100.4", "level=WARN"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log missing %q: %s", want, logged)
		}
	}

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `fincharts_http_requests_total{code="400",method="POST",route="/api/cells"} 1`
	if !strings.Contains(scrape.Body.String(), want) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestRouteDefaultsToOK(t *testing.T) {
	tr := New(applog.New(applog.Config{Output: &bytes.Buffer{}}), nil, nil)
	h := tr.Route("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("code=%d body=%q", rr.Code, rr.Body.String())
	}
}
