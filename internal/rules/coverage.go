package rules

import (
	"sort"

	"robkit/internal/response"
	"robkit/internal/verdict"
)

// Enumerate calls fn once for every combination of tokens drawn from the
// alphabets of qs, stopping early if fn returns false. The map passed to fn
// is reused between calls and must not be retained.
func Enumerate(qs []response.Question, fn func(a response.Answers) bool) {
	if len(qs) == 0 {
		return
	}
	idx := make([]int, len(qs))
	a := make(response.Answers, len(qs))
	for {
		for i, q := range qs {
			a[q.ID] = q.Alphabet[idx[i]]
		}
		if !fn(a) {
			return
		}
		// odometer increment, last question fastest
		i := len(qs) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(qs[i].Alphabet) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Size is the number of combinations Enumerate visits.
func Size(qs []response.Question) int {
	if len(qs) == 0 {
		return 0
	}
	n := 1
	for _, q := range qs {
		n *= len(q.Alphabet)
	}
	return n
}

// Coverage reports how a domain's decision space is partitioned.
type Coverage struct {
	Domain   string                    `json:"domain" yaml:"domain"`
	Total    int                       `json:"total" yaml:"total"`
	Fallback int                       `json:"fallback" yaml:"fallback"`
	ByRule   map[string]int            `json:"by_rule" yaml:"by_rule"`
	ByRisk   map[verdict.RiskLevel]int `json:"-" yaml:"-"`
}

// RuleIDs returns the rule IDs that decided at least one combination, sorted.
func (c Coverage) RuleIDs() []string {
	ids := make([]string, 0, len(c.ByRule))
	for id := range c.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cover runs d over its whole answer space.
func Cover(d Domain) Coverage {
	c := Coverage{
		Domain: d.ID(),
		ByRule: make(map[string]int),
		ByRisk: make(map[verdict.RiskLevel]int),
	}
	Enumerate(d.Questions(), func(a response.Answers) bool {
		o := d.Decide(a)
		c.Total++
		if o.Fallback {
			c.Fallback++
		}
		for _, id := range o.Rules {
			c.ByRule[id]++
		}
		c.ByRisk[o.Risk]++
		return true
	})
	return c
}
