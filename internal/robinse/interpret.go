package robinse

import (
	"fmt"
	"strings"

	"robkit/internal/verdict"
)

const (
	explainLow = "The study shows low risk of bias across all domains. However, as with all observational studies, " +
		"there remains the possibility of uncontrolled confounding that has not been adequately addressed."
	explainSomeConcerns = "The study has some concerns about bias, with at least one domain showing potential issues, " +
		"but no domains have high or very high risk of bias."
	explainHigh = "The study has important problems with at least one domain showing high risk of bias, " +
		"which could substantially affect the reliability of the results."
	explainConcernsAdd = "While individual domains show only some concerns, the cumulative effect of multiple domains " +
		"with potential bias issues elevates the overall assessment to high risk."
	explainVeryHigh = "The study has very serious problems with at least one domain showing very high risk of bias, " +
		"which severely undermines confidence in the results."
	explainHighAdd = "Multiple domains show high risk of bias, and the cumulative effect of these problems " +
		"elevates the overall assessment to very high risk."
)

var recommendations = map[verdict.RiskLevel][]string{
	verdict.Low: {
		"Consider additional sensitivity analyses to address potential unmeasured confounding",
		"Discuss the potential impact of residual confounding in limitations",
		"Results can be interpreted with moderate confidence",
	},
	verdict.SomeConcerns: {
		"Address the identified bias concerns in study interpretation",
		"Consider additional analyses to assess bias impact",
		"Results should be interpreted with caution",
	},
	verdict.High: {
		"Substantial bias concerns require careful interpretation",
		"Consider whether results are reliable enough for decision-making",
		"Additional studies with better methodology may be needed",
	},
	verdict.VeryHigh: {
		"Very serious bias concerns severely limit result reliability",
		"Results should not be used for decision-making without major caveats",
		"New studies with improved methodology are strongly recommended",
	},
}

// Interpret reads the final level of o: an explanation of how the level
// arose, the level's recommendations, and one recommendation per
// contributing domain.
func Interpret(o verdict.OverallVerdict) verdict.Interpretation {
	out := verdict.Interpretation{Summary: explain(o)}
	out.Recommendations = append(out.Recommendations, recommendations[o.Risk]...)
	for _, id := range o.Contributing {
		out.Recommendations = append(out.Recommendations, "Address specific issues in "+label(id))
	}
	return out
}

func explain(o verdict.OverallVerdict) string {
	if o.Overridden() {
		return fmt.Sprintf("The assessor judged the overall risk of bias to be %s rather than the computed %s: %s.",
			o.Risk, o.Computed, strings.TrimSuffix(o.Override.Justification, "."))
	}
	c := o.Counts
	switch o.Risk {
	case verdict.Low:
		return explainLow
	case verdict.SomeConcerns:
		return explainSomeConcerns
	case verdict.High:
		if c.High == 0 {
			return explainConcernsAdd
		}
		return explainHigh
	case verdict.VeryHigh:
		if c.VeryHigh == 0 {
			return explainHighAdd
		}
		return explainVeryHigh
	}
	return "Assessment based on: " + o.Rationale
}

// Interpret says whether the judged biases threaten the conclusions.
func (t ThreatVerdict) Interpret() string {
	switch t.Threat {
	case ThreatYes:
		return "The identified biases are likely to threaten the validity of the study conclusions."
	case ThreatNo:
		return "Despite the identified bias concerns, they are unlikely to threaten the main study conclusions."
	default:
		return "It is unclear whether the identified biases threaten the study conclusions."
	}
}
