package rob2

import (
	"strings"

	"robkit/internal/verdict"
)

// shortNames are the domain names used when listing primary concerns.
var shortNames = map[string]string{
	Randomization:      "Randomization",
	Deviations:         "Deviations",
	MissingData:        "Missing data",
	OutcomeMeasurement: "Outcome measurement",
	SelectiveReporting: "Selective reporting",
}

var readings = map[verdict.RiskLevel]verdict.Interpretation{
	verdict.Low: {
		Summary:    "This study has low risk of bias for this outcome.",
		Confidence: "High confidence",
		Recommendations: []string{
			"Results can be interpreted with confidence",
			"Appropriate for inclusion in evidence synthesis",
			"Weight in meta-analysis: Standard weighting appropriate",
		},
	},
	verdict.SomeConcerns: {
		Summary:    "This study raises some concerns about bias for this outcome.",
		Confidence: "Moderate confidence",
		Recommendations: []string{
			"Results should be interpreted with some caution",
			"Consider impact of identified concerns on findings",
			"Weight in meta-analysis: Consider sensitivity analysis",
			"May warrant investigation of potential bias impact",
		},
	},
	verdict.High: {
		Summary:    "This study has high risk of bias for this outcome.",
		Confidence: "Low confidence",
		Recommendations: []string{
			"Results should be interpreted with significant caution",
			"Consider exclusion from primary analysis",
			"Weight in meta-analysis: Consider downweighting or exclusion",
			"Strong candidate for sensitivity analysis",
			"Effect estimates may be unreliable",
		},
	},
}

// Interpret reads the final level of o. A High verdict also names the
// domains behind it as primary concerns.
func Interpret(o verdict.OverallVerdict) verdict.Interpretation {
	r, ok := readings[o.Risk]
	if !ok {
		return verdict.Interpretation{Summary: "No interpretation for " + o.Risk.String() + " on this instrument."}
	}
	out := verdict.Interpretation{
		Summary:         r.Summary,
		Confidence:      r.Confidence,
		Recommendations: append([]string(nil), r.Recommendations...),
	}
	if o.Risk == verdict.High && len(o.Contributing) > 0 {
		names := make([]string, len(o.Contributing))
		for i, id := range o.Contributing {
			names[i] = shortNames[id]
		}
		out.Recommendations = append(out.Recommendations, "Primary concerns: "+strings.Join(names, ", "))
	}
	return out
}
