// This file parses request bodies into the validated request types the
// handlers work with.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"fincharts/internal/core"
)

// maxBodyBytes bounds every POST body.
const maxBodyBytes = 64 << 10

type (
	cellRequest struct {
		Category string `validate:"required,max=64"`
		Month    string `validate:"required,numeric"`
		Value    string `validate:"max=256"`
	}

	budgetRequest struct {
		Month string `validate:"required,numeric"`
		Value string `validate:"max=256"`
	}

	monthRequest struct {
		Month string `validate:"required,numeric"`
	}

	commitRequest struct {
		Note string `validate:"omitempty,max=512"`
	}

	settingsRequest struct {
		Currency string `validate:"required,max=16"`
	}
)

// RequestBodyParser reads a JSON object or a form-encoded body, the two
// shapes HTMX and API clients send.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for Parse.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(r.Body)
	}
	return p
}

// Parse decodes the body as JSON when it looks like JSON, as a form
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and strips control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// parseMonth turns a month index into an int. Anything that is not a
// whole number in [0,12) is out of range.
func parseMonth(raw string) (int, error) {
	m, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: month %q", core.ErrOutOfRange, raw)
	}
	if err := core.CheckMonth(m); err != nil {
		return 0, err
	}
	return m, nil
}

// validationMessage flattens validator errors into one line for the client.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "numeric":
			parts = append(parts, field+" must be a number")
		case "max":
			parts = append(parts, field+" is too long")
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
