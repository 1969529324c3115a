package robinse

import (
	"fmt"
	"sort"

	"robkit/internal/verdict"
)

// Escalation thresholds. Several High domains add up to Very high, several
// some-concerns domains add up to High.
const (
	highEscalateAt     = 3
	concernsEscalateAt = 4
)

// Combine derives the overall verdict from the seven domain levels. Every
// domain must be present exactly once. Low is only reached when every
// domain, confounding included, is Low, and always carries LowCaveat.
func Combine(ls []verdict.DomainLevel) (verdict.OverallVerdict, error) {
	ls, err := verdict.Collect(Name, domainOrder, ls)
	if err != nil {
		return verdict.OverallVerdict{}, err
	}

	out := verdict.OverallVerdict{Counts: verdict.Count(ls)}
	c := out.Counts
	switch {
	case c.VeryHigh > 0:
		out.Risk = verdict.VeryHigh
		out.Contributing = verdict.DomainsAt(ls, verdict.VeryHigh)
		out.Rationale = "Very high risk of bias in: " + labelList(out.Contributing)
	case c.High >= highEscalateAt:
		out.Risk = verdict.VeryHigh
		out.Contributing = verdict.DomainsAt(ls, verdict.High)
		out.Rationale = fmt.Sprintf("High risk of bias in %d domains, which together amount to a very high risk: %s",
			c.High, labelList(out.Contributing))
	case c.High > 0:
		out.Risk = verdict.High
		out.Contributing = verdict.DomainsAt(ls, verdict.High)
		out.Rationale = "High risk of bias in: " + labelList(out.Contributing)
	case c.SomeConcerns >= concernsEscalateAt:
		out.Risk = verdict.High
		out.Contributing = verdict.DomainsAt(ls, verdict.SomeConcerns)
		out.Rationale = fmt.Sprintf("Some concerns in %d domains, which together amount to a high risk: %s",
			c.SomeConcerns, labelList(out.Contributing))
	case c.SomeConcerns > 0:
		out.Risk = verdict.SomeConcerns
		out.Contributing = verdict.DomainsAt(ls, verdict.SomeConcerns)
		out.Rationale = "Some concerns in: " + labelList(out.Contributing)
	default:
		// Collect guarantees all seven domains, so every one of them is Low here.
		out.Risk = verdict.Low
		out.Rationale = "Low risk of bias in all domains, including confounding"
		out.Caveat = LowCaveat
	}
	out.Computed = out.Risk
	return out, nil
}

// CombineLabels is Combine over text labels keyed by domain ID, such as
// "Low risk of bias (except for concerns about uncontrolled confounding)",
// "some_concerns" or "Very high risk of bias".
func CombineLabels(in map[string]string) (verdict.OverallVerdict, error) {
	ids := make([]string, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ls := make([]verdict.DomainLevel, 0, len(in))
	for _, id := range ids {
		r, err := verdict.ParseRiskLevel(in[id])
		if err != nil {
			return verdict.OverallVerdict{}, fmt.Errorf("%s: %s: %w", Name, id, err)
		}
		ls = append(ls, verdict.DomainLevel{Domain: id, Risk: r})
	}
	return Combine(ls)
}
