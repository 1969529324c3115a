// Package rules evaluates domains expressed as ordered rule tables.
//
// A table is a list of (predicate, verdict, rationale) rules tried in order
// plus one fallback rule taken when nothing matches. Decision trees are
// flattened into one rule per leaf whose Path lists the questions visited on
// the way there, so the pathway of a verdict is exactly the tree path.
package rules

import (
	"robkit/internal/response"
	"robkit/internal/verdict"
)

// Rule is one row of a table.
type Rule struct {
	ID   string
	Path []string
	When Predicate
	Risk verdict.RiskLevel
	// Reason is the rationale; Explain, when set, builds it from the answers.
	Reason  string
	Explain func(a response.Answers) string
}

func (r *Rule) rationale(a response.Answers) string {
	if r.Explain != nil {
		return r.Explain(a)
	}
	return r.Reason
}

// Table is an ordered rule list with a fallback.
type Table struct {
	Name     string
	Rules    []Rule
	Fallback Rule
}

// Outcome is the result of evaluating one or more tables.
type Outcome struct {
	Risk     verdict.RiskLevel
	Reason   string
	Steps    []verdict.Step
	Rules    []string
	Fallback bool
}

// Evaluate returns the outcome of the first matching rule, or of the
// fallback when none matches.
func (t *Table) Evaluate(a response.Answers) Outcome {
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.When(a) {
			return outcome(r, a, false)
		}
	}
	return outcome(&t.Fallback, a, true)
}

func outcome(r *Rule, a response.Answers, fallback bool) Outcome {
	return Outcome{
		Risk:     r.Risk,
		Reason:   r.rationale(a),
		Steps:    Trace(a, r.Path...),
		Rules:    []string{r.ID},
		Fallback: fallback,
	}
}

// Trace builds the pathway for qs, skipping questions without an answer.
func Trace(a response.Answers, qs ...string) []verdict.Step {
	steps := make([]verdict.Step, 0, len(qs))
	for _, q := range qs {
		if r, ok := a[q]; ok {
			steps = append(steps, verdict.Step{Question: q, Answer: r})
		}
	}
	return steps
}

// Join concatenates the trace of parts and carries their fallback tag.
// Risk and Reason are left for the caller to decide.
func Join(parts ...Outcome) Outcome {
	var out Outcome
	seen := make(map[string]bool)
	for _, p := range parts {
		for _, s := range p.Steps {
			if seen[s.Question] {
				continue
			}
			seen[s.Question] = true
			out.Steps = append(out.Steps, s)
		}
		out.Rules = append(out.Rules, p.Rules...)
		out.Fallback = out.Fallback || p.Fallback
	}
	return out
}

// Domain is a named set of questions decided by rule tables.
type Domain interface {
	ID() string
	Name() string
	Questions() []response.Question
	Decide(a response.Answers) Outcome
}

// Basic is a Domain assembled from its parts.
type Basic struct {
	id        string
	name      string
	questions []response.Question
	decide    func(a response.Answers) Outcome
}

// NewDomain returns a Domain that decides with decide, usually a
// (*Table).Evaluate method value or a function joining several tables.
func NewDomain(id, name string, qs []response.Question, decide func(a response.Answers) Outcome) *Basic {
	return &Basic{id: id, name: name, questions: qs, decide: decide}
}

func (d *Basic) ID() string                        { return d.id }
func (d *Basic) Name() string                      { return d.name }
func (d *Basic) Questions() []response.Question    { return d.questions }
func (d *Basic) Decide(a response.Answers) Outcome { return d.decide(a) }

// Verdict runs d over already validated answers.
func Verdict(d Domain, a response.Answers) verdict.DomainVerdict {
	o := d.Decide(a)
	return verdict.DomainVerdict{
		Domain:    d.ID(),
		Name:      d.Name(),
		Risk:      o.Risk,
		Rationale: o.Reason,
		Pathway:   o.Steps,
		Rules:     o.Rules,
		Fallback:  o.Fallback,
	}
}

// Evaluate normalizes raw answers for d and runs it.
func Evaluate(d Domain, raw map[string]string) (verdict.DomainVerdict, error) {
	a, err := response.NormalizeAll(d.ID(), d.Questions(), raw)
	if err != nil {
		return verdict.DomainVerdict{}, err
	}
	return Verdict(d, a), nil
}
