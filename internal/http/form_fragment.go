package http

import (
	"bytes"
	"html/template"

	"fincharts/internal/view"
)

// formTemplate renders one month tab for hx-get requests. Inputs post each
// change to /api/cells or /api/budget as the user types.
var formTemplate = template.Must(template.New("form").Parse(`<form class="month-form" data-month="{{.Month}}">
<h3>{{.Label}}</h3>
{{range .Expenses}}{{template "field" .}}{{end}}
{{range .Incomes}}{{template "field" .}}{{end}}
<label class="field budget" data-color="{{.Budget.Color}}">{{.Budget.Name}}
<input type="text" name="value" value="{{.Budget.Value}}" placeholder="{{.Budget.Placeholder}}" title="{{.Budget.Description}}"
 hx-post="/api/budget" hx-trigger="input changed delay:300ms" hx-vals='{"month": "{{.Month}}"}' hx-swap="none">
</label>
</form>
{{define "field"}}<label class="field" data-color="{{.Color}}">{{.Name}}
<input type="text" name="value" value="{{.Value}}" placeholder="{{.Placeholder}}" title="{{.Description}}"
 hx-post="/api/cells" hx-trigger="input changed delay:300ms" hx-vals='{"category": "{{.Category}}", "month": "{{.Month}}"}' hx-swap="none">
</label>
{{end}}`))

func renderForm(f view.Form) ([]byte, error) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
