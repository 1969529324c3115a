// Package audit compares a human and an automated evaluation of the same
// study. The comparison is a Datalog program over the canonical answers and
// verdicts of both sides.
package audit

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"robkit/internal/logging"
	"robkit/internal/response"
	"robkit/internal/verdict"
)

//go:embed divergence.mg
var divergenceProgram string

const (
	human     = "/human"
	automated = "/automated"
)

// Side is one evaluated answer set.
type Side struct {
	Answers map[string]response.Answers
	Domains []verdict.DomainVerdict
	Overall verdict.RiskLevel
}

// AnswerDivergence is a question answered differently by the two sides.
type AnswerDivergence struct {
	Domain    string            `json:"domain" yaml:"domain"`
	Question  string            `json:"question" yaml:"question"`
	Human     response.Response `json:"human" yaml:"human"`
	Automated response.Response `json:"automated" yaml:"automated"`
}

// DomainDivergence is a domain judged at different risk levels.
type DomainDivergence struct {
	Domain    string            `json:"domain" yaml:"domain"`
	Human     verdict.RiskLevel `json:"human" yaml:"human"`
	Automated verdict.RiskLevel `json:"automated" yaml:"automated"`
}

// OverallDivergence is a disagreement on the overall verdict.
type OverallDivergence struct {
	Human     verdict.RiskLevel `json:"human" yaml:"human"`
	Automated verdict.RiskLevel `json:"automated" yaml:"automated"`
}

// Report lists every divergence, sorted by domain and question.
type Report struct {
	Answers []AnswerDivergence `json:"answers" yaml:"answers"`
	Domains []DomainDivergence `json:"domains" yaml:"domains"`
	// Masked lists domains whose answers differ while their verdicts agree.
	Masked  []string           `json:"masked,omitempty" yaml:"masked,omitempty"`
	Overall *OverallDivergence `json:"overall,omitempty" yaml:"overall,omitempty"`
	// Compared counts questions answered by both sides.
	Compared  int     `json:"compared" yaml:"compared"`
	Agreement float64 `json:"agreement" yaml:"agreement"`
}

// Diverges reports whether any answer or verdict differs.
func (r Report) Diverges() bool {
	return len(r.Answers) > 0 || len(r.Domains) > 0 || r.Overall != nil
}

// Run derives the divergence report for the two sides.
func Run(h, a Side) (Report, error) {
	e, err := NewEngine(divergenceProgram, DefaultFactLimit)
	if err != nil {
		return Report{}, err
	}
	if err := load(e, human, h); err != nil {
		return Report{}, err
	}
	if err := load(e, automated, a); err != nil {
		return Report{}, err
	}
	if err := e.Eval(); err != nil {
		return Report{}, fmt.Errorf("audit: %w", err)
	}

	var r Report
	rows, err := e.GetFacts("answer_divergence")
	if err != nil {
		return Report{}, err
	}
	for _, row := range rows {
		r.Answers = append(r.Answers, AnswerDivergence{
			Domain:    row[0],
			Question:  row[1],
			Human:     response.Response(row[2]),
			Automated: response.Response(row[3]),
		})
	}
	sort.Slice(r.Answers, func(i, j int) bool {
		if r.Answers[i].Domain != r.Answers[j].Domain {
			return r.Answers[i].Domain < r.Answers[j].Domain
		}
		return lessID(r.Answers[i].Question, r.Answers[j].Question)
	})

	rows, err = e.GetFacts("domain_divergence")
	if err != nil {
		return Report{}, err
	}
	for _, row := range rows {
		hl, al, err := levels(row[1], row[2])
		if err != nil {
			return Report{}, err
		}
		r.Domains = append(r.Domains, DomainDivergence{Domain: row[0], Human: hl, Automated: al})
	}
	sort.Slice(r.Domains, func(i, j int) bool { return r.Domains[i].Domain < r.Domains[j].Domain })

	rows, err = e.GetFacts("masked_divergence")
	if err != nil {
		return Report{}, err
	}
	for _, row := range rows {
		r.Masked = append(r.Masked, row[0])
	}
	sort.Strings(r.Masked)

	rows, err = e.GetFacts("overall_divergence")
	if err != nil {
		return Report{}, err
	}
	if len(rows) > 0 {
		hl, al, err := levels(rows[0][0], rows[0][1])
		if err != nil {
			return Report{}, err
		}
		r.Overall = &OverallDivergence{Human: hl, Automated: al}
	}

	rows, err = e.GetFacts("answered_both")
	if err != nil {
		return Report{}, err
	}
	r.Compared = len(rows)
	if r.Compared > 0 {
		r.Agreement = float64(r.Compared-len(r.Answers)) / float64(r.Compared)
	}

	logging.Get(logging.CategoryAudit).Debug("compared %d answers: %d answer, %d domain divergences, overall diverges: %v",
		r.Compared, len(r.Answers), len(r.Domains), r.Overall != nil)
	return r, nil
}

func load(e *Engine, side string, s Side) error {
	for d, as := range s.Answers {
		for q, tok := range as {
			if err := e.AddFact("answer", side, d, q, string(tok)); err != nil {
				return err
			}
		}
	}
	for _, v := range s.Domains {
		if err := e.AddFact("domain_risk", side, v.Domain, v.Risk.Key()); err != nil {
			return err
		}
	}
	if s.Overall.Valid() {
		if err := e.AddFact("overall_risk", side, s.Overall.Key()); err != nil {
			return err
		}
	}
	return nil
}

func levels(h, a string) (verdict.RiskLevel, verdict.RiskLevel, error) {
	hl, err := verdict.ParseRiskLevel(h)
	if err != nil {
		return 0, 0, err
	}
	al, err := verdict.ParseRiskLevel(a)
	if err != nil {
		return 0, 0, err
	}
	return hl, al, nil
}

// lessID orders question IDs by their numeric parts, so "5.4" < "5.10".
func lessID(a, b string) bool {
	pa, pb := idParts(a), idParts(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	if len(pa) != len(pb) {
		return len(pa) < len(pb)
	}
	return a < b
}

func idParts(id string) []int {
	fields := strings.FieldsFunc(id, func(r rune) bool { return r < '0' || r > '9' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
