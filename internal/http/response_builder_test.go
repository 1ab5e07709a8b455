package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged(2024, 3, "physiological").
		TriggerChartsRefresh(7).
		TriggerSuccessNotification("Saved").
		Write(w)

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	changed := got[EventLedgerChanged]
	if changed["year"] != float64(2024) || changed["month"] != float64(3) || changed["category"] != "physiological" {
		t.Errorf("%s = %v", EventLedgerChanged, changed)
	}
	if got[EventChartsRefresh]["version"] != float64(7) {
		t.Errorf("%s = %v", EventChartsRefresh, got[EventChartsRefresh])
	}
	note := got[EventShowNotification]
	if note["type"] != "success" || note["message"] != "Saved" || note["duration"] != float64(3000) {
		t.Errorf("%s = %v", EventShowNotification, note)
	}
}

func TestHTMXResponseBuilder_BudgetChangeHasNoCategory(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().TriggerLedgerChanged(2024, 0, "").Write(w)
	if strings.Contains(w.Header().Get("HX-Trigger"), "category") {
		t.Errorf("budget edit carries a category: %s", w.Header().Get("HX-Trigger"))
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestHTMXResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().JSON(map[string]int{"value": 250}).Write(w)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `{"value":250}` {
		t.Errorf("Body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	NewHTMXResponse().JSON(math.NaN()).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unencodable body: status = %d, want 500", w.Code)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest, `{"error":"Invalid input"}`},
		{"unprocessable entity", UnprocessableEntityError("Validation failed"), http.StatusUnprocessableEntity, `{"error":"Validation failed"}`},
		{"conflict", ConflictError("Editor is closed"), http.StatusConflict, `{"error":"Editor is closed"}`},
		{"internal server error", InternalServerError("Something broke"), http.StatusInternalServerError, `{"error":"Something broke"}`},
		{"not found", NotFoundError("File not found!"), http.StatusNotFound, `{"error":"File not found!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	if strings.Contains(w.Body.String(), "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if strings.Contains(w.Header().Get("HX-Trigger"), "<script>") {
		t.Error("Notification trigger did not escape HTML")
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequestsError().Write(w)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Status code = %d", w.Code)
	}
}

func TestNotificationTypes(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		NewHTMXResponse().
			TriggerNotification(tt.notifType, "test", 1000).
			Write(w)

		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"type":"`+tt.want+`"`) {
			t.Errorf("Notification type %q not found in trigger: %s", tt.want, trigger)
		}
	}
}
