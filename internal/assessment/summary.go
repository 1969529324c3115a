package assessment

import (
	"strings"
	"text/template"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`{{.Title}}. Overall: {{with .Overall.Caveat}}{{.}}{{else}}{{.Overall.Risk}}{{end}}. {{.Overall.Rationale}}.` +
		`{{if .Domains}} Domains: {{range $i, $d := .Domains}}{{if $i}}; {{end}}{{$d.Name}}: {{$d.Risk}}` +
		`{{if $d.Fallback}} (unclassified combination){{end}}{{end}}.{{end}}` +
		`{{with .Threat}} Threat to conclusions: {{.Threat}}. {{.Rationale}}.{{end}}` +
		`{{with .Interpretation.Summary}} {{.}}{{end}}{{with .Interpretation.Confidence}} Confidence in the result: {{.}}.{{end}}` +
		`{{with .Interpretation.Recommendations}} Recommendations: {{range $i, $r := .}}{{if $i}}; {{end}}{{$r}}{{end}}.{{end}}`))

// Summary renders a one-paragraph account of a.
func Summary(a *Assessment) string {
	var sb strings.Builder
	if err := summaryTemplate.Execute(&sb, a); err != nil {
		return a.Title + ": " + err.Error()
	}
	return sb.String()
}
