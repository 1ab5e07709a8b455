package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentApp, Output: &buf}), &buf
}

func TestLoggerComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.WithComponent(ComponentWorker).Info("Worker started", FieldYear, 2024)

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "year=2024") {
		t.Errorf("log line = %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component logged more than once: %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	var seen string
	h := Middleware(logger)(RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		FromContext(r.Context()).InfoContext(r.Context(), "Handling")
	})))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/charts", nil))
		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("request id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
		}
		if !strings.Contains(buf.String(), "request_id="+seen) {
			t.Errorf("logger missing request id: %q", buf.String())
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/charts", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "abc-123" {
			t.Errorf("request id = %q", seen)
		}
	})
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger")
	}
}

func TestStructuredLogger(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	sl := NewStructuredLogger(logger)
	ctx := context.Background()

	sl.LogHTTPEnd(ctx, httptest.NewRequest("POST", "/api/cells", nil), 400, 3, "10.0.0.1")
	sl.LogEdit(ctx, "physiological", 3, "abc", 0, true)
	sl.LogError(ctx, "Commit failed", errors.New("disk full"), ComponentStorage, OpCommit)

	out := buf.String()
	for _, want := range []string{
		"level=WARN", "status_code=400", "success=false",
		"Edit input coerced", "coerced=true", "component=ledger",
		"level=ERROR", `error="disk full"`, "operation=commit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
