package rob2

import (
	"fmt"
	"slices"
	"strings"

	"robkit/internal/verdict"
)

// escalateAt is the number of some-concerns domains that lowers confidence
// as much as a single high-risk domain.
const escalateAt = 3

var domainOrder = []string{Randomization, Deviations, MissingData, OutcomeMeasurement, SelectiveReporting}

// scale is the trial instrument's set of risk levels.
var scale = []verdict.RiskLevel{verdict.Low, verdict.SomeConcerns, verdict.High}

// Combine derives the overall verdict from the five domain levels. Every
// domain must be present exactly once; the trial instrument has no Very high
// level.
func Combine(ls []verdict.DomainLevel) (verdict.OverallVerdict, error) {
	ls, err := verdict.Collect(Name, domainOrder, ls)
	if err != nil {
		return verdict.OverallVerdict{}, err
	}
	for _, l := range ls {
		if !slices.Contains(scale, l.Risk) {
			return verdict.OverallVerdict{}, fmt.Errorf("%s: %s: %w: %s", Name, l.Domain, verdict.ErrUnknownRiskLevel, l.Risk)
		}
	}

	out := verdict.OverallVerdict{Counts: verdict.Count(ls)}
	switch {
	case out.Counts.High > 0:
		out.Risk = verdict.High
		out.Contributing = verdict.DomainsAt(ls, verdict.High)
		out.Rationale = "High risk of bias in: " + labels(out.Contributing)
	case out.Counts.SomeConcerns == 0:
		out.Risk = verdict.Low
		out.Rationale = "Low risk of bias across all domains"
	case out.Counts.SomeConcerns >= escalateAt:
		out.Risk = verdict.High
		out.Contributing = verdict.DomainsAt(ls, verdict.SomeConcerns)
		out.Rationale = "Some concerns in multiple domains substantially lower confidence: " + labels(out.Contributing)
	default:
		out.Risk = verdict.SomeConcerns
		out.Contributing = verdict.DomainsAt(ls, verdict.SomeConcerns)
		out.Rationale = "Some concerns identified in: " + labels(out.Contributing)
	}
	out.Computed = out.Risk
	return out, nil
}

func labels(ids []string) string {
	ls := make([]string, len(ids))
	for i, id := range ids {
		ls[i] = label(id)
	}
	return strings.Join(ls, ", ")
}
