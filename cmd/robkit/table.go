package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"robkit/internal/assessment"
	"robkit/internal/verdict"
)

// studyNameWidth caps the study column.
const studyNameWidth = 24

var abbreviations = map[verdict.RiskLevel]string{
	verdict.Low:          "L",
	verdict.SomeConcerns: "SC",
	verdict.High:         "H",
	verdict.VeryHigh:     "VH",
}

// studyTable summarizes a batch: one row per answer file with each domain's
// level abbreviated.
type studyTable struct {
	Headers []string
	Rows    [][]string
	// Legends holds one domain legend per instrument in the batch.
	Legends []string
	Errors  []string
}

func newStudyTable(results []assessment.BatchResult) *studyTable {
	domains := 0
	for _, r := range results {
		if r.Assessment != nil {
			domains = max(domains, domainCount(r.Assessment))
		}
	}

	t := &studyTable{Headers: []string{"Study", "Instrument"}}
	for i := 1; i <= domains; i++ {
		t.Headers = append(t.Headers, fmt.Sprintf("D%d", i))
	}
	t.Headers = append(t.Headers, "Overall")

	seen := make(map[string]bool)
	for _, r := range results {
		row := make([]string, 0, len(t.Headers))
		if r.Err != nil {
			row = append(row, truncate(r.Path), "")
			for i := 0; i < domains; i++ {
				row = append(row, "")
			}
			t.Rows = append(t.Rows, append(row, "error"))
			t.Errors = append(t.Errors, fmt.Sprintf("%s: %v", r.Path, r.Err))
			continue
		}

		a := r.Assessment
		name := a.Study
		if name == "" {
			name = r.Path
		}
		row = append(row, truncate(name), a.Instrument+variantSuffix(a.Variant))
		n := domainCount(a)
		for i := 0; i < domains; i++ {
			switch {
			case i < len(a.Domains):
				row = append(row, abbreviations[a.Domains[i].Risk])
			case i < n:
				// recombined from levels; no domain verdicts
				row = append(row, "-")
			default:
				row = append(row, "")
			}
		}
		t.Rows = append(t.Rows, append(row, abbreviations[a.Overall.Risk]))

		key := a.Instrument + variantSuffix(a.Variant)
		if !seen[key] {
			seen[key] = true
			t.Legends = append(t.Legends, legend(a))
		}
	}
	return t
}

// domainCount is the number of domains of the assessment's instrument, which
// assessments recombined from levels alone do not list.
func domainCount(a *assessment.Assessment) int {
	if len(a.Domains) > 0 {
		return len(a.Domains)
	}
	inst, err := assessment.Lookup(a.Instrument, a.Variant)
	if err != nil {
		return 0
	}
	return len(inst.Domains())
}

func legend(a *assessment.Assessment) string {
	inst, err := assessment.Lookup(a.Instrument, a.Variant)
	if err != nil {
		return a.Title
	}
	parts := make([]string, 0, len(inst.Domains()))
	for i, d := range inst.Domains() {
		parts = append(parts, fmt.Sprintf("D%d = %s", i+1, d.Name()))
	}
	return fmt.Sprintf("%s: %s", inst.Title(), strings.Join(parts, ", "))
}

func variantSuffix(v string) string {
	if v == "" {
		return ""
	}
	return " (" + v + ")"
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= studyNameWidth {
		return s
	}
	return string(r[:studyNameWidth])
}

// Render writes the table to w. Colors are only emitted when w is a terminal.
func (t *studyTable) Render(w io.Writer) error {
	re := lipgloss.NewRenderer(w)
	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)
	rowStyle := re.NewStyle().Padding(0, 1)
	sepStyle := re.NewStyle().Foreground(lipgloss.Color("240"))
	riskColors := map[string]lipgloss.Color{
		"L":     lipgloss.Color("2"),
		"SC":    lipgloss.Color("3"),
		"H":     lipgloss.Color("1"),
		"VH":    lipgloss.Color("5"),
		"error": lipgloss.Color("1"),
	}

	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	// Style widths include the padding.
	total := len(colWidths) - 1
	for i := range colWidths {
		colWidths[i] += 2
		total += colWidths[i]
	}

	var sb strings.Builder
	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(sepStyle.Render(strings.Repeat("-", total)) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			style := rowStyle
			if c, ok := riskColors[cell]; ok && i >= 2 {
				style = style.Foreground(c)
			}
			sb.WriteString(style.Width(colWidths[i]).Render(cell))
			if i < len(row)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nLegend: L = Low risk, SC = Some concerns, H = High risk, VH = Very high risk\n")
	for _, l := range t.Legends {
		sb.WriteString(l + "\n")
	}
	for _, e := range t.Errors {
		sb.WriteString("error: " + e + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
