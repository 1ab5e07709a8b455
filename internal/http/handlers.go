package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fincharts/internal/core"
	applog "fincharts/internal/log"
	"fincharts/internal/services"
	"fincharts/internal/settings"
	"fincharts/internal/vault"
	"fincharts/internal/view"
)

// Notification texts shown after a note update.
const (
	msgNoteUpdated = "Financial data updated successfully!"
	msgNoteMissing = "File not found!"
)

// Note outcomes reported by /api/commit.
const (
	noteSkipped = "skipped"
	noteUpdated = "updated"
	noteMissing = "missing"
	noteFailed  = "failed"
)

type (
	categoryJSON struct {
		ID          core.CategoryID `json:"id"`
		Description string          `json:"description"`
		Color       string          `json:"color"`
		BorderColor string          `json:"borderColor"`
	}

	catalogResponse struct {
		Expense []categoryJSON `json:"expense"`
		Income  []categoryJSON `json:"income"`
	}

	chartsResponse struct {
		Stale        bool        `json:"stale"`
		PendingEdits int         `json:"pendingEdits"`
		Bundle       view.Bundle `json:"bundle"`
	}

	cellResponse struct {
		Category core.CategoryID `json:"category,omitempty"`
		Month    int             `json:"month"`
		Value    float64         `json:"value"`
		Display  string          `json:"display"`
	}

	commitResponse struct {
		Ref  string `json:"ref"`
		Year int    `json:"year"`
		Note string `json:"note"`
	}
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrOutOfRange), errors.Is(err, core.ErrNonFinite):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrEditorClosed):
		return http.StatusConflict
	case errors.Is(err, core.ErrMissingTarget):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes it with the status statusFor picks. Server
// errors hide the cause from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op,
			applog.FieldError, err.Error())
		msg = "Internal error"
	}
	ErrorResponse(code, msg).Write(w)
}

// parseBody parses the body, lets fill build the request from it and
// validates the result. On failure it writes the error response itself.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request, fill func(p *RequestBodyParser) any) bool {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
			return false
		}
		BadRequestError("Invalid request body").Write(w)
		return false
	}
	if err := s.validate.Struct(fill(p)); err != nil {
		BadRequestError(validationMessage(err)).Write(w)
		return false
	}
	return true
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.session.Catalog()
	resp := catalogResponse{
		Expense: categoriesJSON(c.Categories(core.Expense)),
		Income:  categoriesJSON(c.Categories(core.Income)),
	}
	NewHTMXResponse().JSON(resp).Write(w)
}

func categoriesJSON(cats []core.Category) []categoryJSON {
	out := make([]categoryJSON, len(cats))
	for i, c := range cats {
		out[i] = categoryJSON{ID: c.ID, Description: c.Description, Color: c.Color, BorderColor: c.BorderColor}
	}
	return out
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	st := s.session.ChartsState()
	NewHTMXResponse().JSON(chartsResponse{
		Stale:        st.Stale,
		PendingEdits: st.Pending,
		Bundle:       st.Bundle,
	}).Write(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	b, err := s.session.Refresh(r.Context())
	s.metrics.RecordRefresh(time.Since(start), err)
	if err != nil {
		s.fail(w, r, applog.OpRefresh, err)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Charts refreshed",
		applog.FieldVersion, b.Version,
		applog.FieldYear, b.Year)
	NewHTMXResponse().
		TriggerChartsRefresh(b.Version).
		JSON(chartsResponse{Bundle: b}).
		Write(w)
}

func (s *Server) handleEditorState(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.session.EditorState()).Write(w)
}

func (s *Server) handleEditorOpen(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.session.OpenEditor()).Write(w)
}

func (s *Server) handleEditorClose(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.session.CloseEditor()).Write(w)
}

func (s *Server) handleEditorSelect(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if !s.parseBody(w, r, func(p *RequestBodyParser) any {
		req = monthRequest{Month: p.Get("month")}
		return req
	}) {
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	state, err := s.session.SelectMonth(month)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	NewHTMXResponse().JSON(state).Write(w)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	form, err := s.session.Form(month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		html, err := renderForm(form)
		if err != nil {
			s.fail(w, r, applog.OpRead, err)
			return
		}
		NewHTMXResponse().BodyHTML(html).Write(w)
		return
	}
	NewHTMXResponse().JSON(form).Write(w)
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !s.parseBody(w, r, func(p *RequestBodyParser) any {
		req = cellRequest{Category: p.Get("category"), Month: p.Get("month"), Value: p.Get("value")}
		return req
	}) {
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	category := core.CategoryID(req.Category)
	v, err := s.session.ApplyEdit(category, month, req.Value)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	NewHTMXResponse().
		TriggerLedgerChanged(s.session.Year(), month, req.Category).
		JSON(cellResponse{Category: category, Month: month, Value: v, Display: core.FormatAmount(v)}).
		Write(w)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !s.parseBody(w, r, func(p *RequestBodyParser) any {
		req = budgetRequest{Month: p.Get("month"), Value: p.Get("value")}
		return req
	}) {
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	v, err := s.session.ApplyBudget(month, req.Value)
	if err != nil {
		s.fail(w, r, applog.OpEdit, err)
		return
	}
	NewHTMXResponse().
		TriggerLedgerChanged(s.session.Year(), month, "").
		JSON(cellResponse{Month: month, Value: v, Display: core.FormatAmount(v)}).
		Write(w)
}

// handleCommit persists the ledger, then writes the expense totals to the
// vault note when a vault is configured. A note failure does not undo the
// commit; it only changes the notification.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !s.parseBody(w, r, func(p *RequestBodyParser) any {
		req = commitRequest{Note: p.Get("note")}
		return req
	}) {
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	snap := s.session.Snapshot()
	data := snap.Data
	ref, err := s.ledger.Commit(ctx, data)
	if err != nil {
		s.fail(w, r, applog.OpCommit, err)
		return
	}

	resp := commitResponse{Ref: ref, Year: data.Year, Note: noteSkipped}
	b := NewHTMXResponse()
	if !s.ledger.NotesEnabled() {
		b.TriggerSuccessNotification("Ledger saved")
		b.JSON(resp).Write(w)
		return
	}

	err = s.ledger.UpdateNote(ctx, req.Note, snap.Expenses.Slice())
	switch {
	case err == nil:
		resp.Note = noteUpdated
		b.TriggerSuccessNotification(msgNoteUpdated)
	case errors.Is(err, core.ErrMissingTarget), errors.Is(err, vault.ErrOutsideVault), errors.Is(err, services.ErrNoVault):
		resp.Note = noteMissing
		logger.WarnContext(ctx, "Vault note not updated", applog.FieldError, err.Error())
		b.TriggerErrorNotification(msgNoteMissing)
	default:
		resp.Note = noteFailed
		logger.ErrorContext(ctx, "Failed to update vault note", applog.FieldError, err.Error())
		b.TriggerErrorNotification("Failed to update note")
	}
	b.JSON(resp).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.Settings(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewHTMXResponse().JSON(cfg).Write(w)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !s.parseBody(w, r, func(p *RequestBodyParser) any {
		req = settingsRequest{Currency: p.Get("currency")}
		return req
	}) {
		return
	}
	cfg, err := s.ledger.SaveSettings(r.Context(), settings.Settings{Currency: req.Currency})
	if err != nil {
		if errors.Is(err, settings.ErrEmptyCurrency) {
			UnprocessableEntityError("Currency must not be empty").Write(w)
			return
		}
		s.fail(w, r, applog.OpCommit, err)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification("Settings saved").
		JSON(cfg).
		Write(w)
}
