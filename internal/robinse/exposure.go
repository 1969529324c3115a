package robinse

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var (
	mismeasured   = rules.Is("2.1", response.StrongNo)
	characterised = rules.In("2.1", response.Group{
		response.Yes, response.ProbablyYes, response.WeakNo, response.NoInformation,
	})
)

// exposureMeasurementTable: a strong-no on 2.1 leads into the
// mismeasurement questions; any other substantive answer is judged by the
// error at a single time point.
var exposureMeasurementTable = &rules.Table{
	Name: ExposureMeasurement,
	Rules: []rules.Rule{
		{
			ID:     "domain_2.mismeasurement.high.non_differential",
			Path:   []string{"2.1", "2.4"},
			When:   rules.AllOf(mismeasured, rules.Is("2.4", response.StrongYes)),
			Risk:   verdict.High,
			Reason: "Important non-differential error in measurement of the exposure",
		},
		{
			ID:     "domain_2.mismeasurement.some_concerns.non_differential",
			Path:   []string{"2.1", "2.4"},
			When:   rules.AllOf(mismeasured, rules.In("2.4", weakYesNI)),
			Risk:   verdict.SomeConcerns,
			Reason: "Uncertain impact of non-differential measurement error",
		},
		{
			ID:     "domain_2.mismeasurement.high.differential",
			Path:   []string{"2.1", "2.4", "2.3"},
			When:   rules.AllOf(mismeasured, rules.In("2.4", response.NoPN), rules.Is("2.3", response.StrongYes)),
			Risk:   verdict.High,
			Reason: "Strongly differential error in measurement of the exposure",
		},
		{
			ID:     "domain_2.mismeasurement.some_concerns.differential",
			Path:   []string{"2.1", "2.4", "2.3"},
			When:   rules.AllOf(mismeasured, rules.In("2.4", response.NoPN), rules.In("2.3", weakYesNI)),
			Risk:   verdict.SomeConcerns,
			Reason: "Measurement error may be differential",
		},
		{
			ID:     "domain_2.low",
			Path:   []string{"2.1", "2.2"},
			When:   rules.AllOf(characterised, rules.In("2.2", response.NoPN)),
			Risk:   verdict.Low,
			Reason: "Exposure well characterised with minimal error at a single time point",
		},
		{
			ID:     "domain_2.some_concerns.single_timepoint",
			Path:   []string{"2.1", "2.2"},
			When:   rules.AllOf(characterised, rules.In("2.2", weakYesNI)),
			Risk:   verdict.SomeConcerns,
			Reason: "Some error in measurement of the exposure at a single time point",
		},
		{
			ID:     "domain_2.very_high.single_timepoint",
			Path:   []string{"2.1", "2.2"},
			When:   rules.AllOf(characterised, rules.Is("2.2", response.StrongYes)),
			Risk:   verdict.VeryHigh,
			Reason: "Severe error in measurement of the exposure at a single time point",
		},
		{
			ID:     "domain_2.some_concerns.unspecified_error",
			Path:   []string{"2.1", "2.2"},
			When:   rules.AllOf(characterised, rules.In("2.2", response.YesPY)),
			Risk:   verdict.SomeConcerns,
			Reason: "Error in measurement of the exposure at a single time point of unspecified severity",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_2.fallback",
		Path:   []string{"2.1", "2.2", "2.3", "2.4"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for measurement of the exposure",
	},
}

func exposureMeasurementDomain() rules.Domain {
	return rules.NewDomain(ExposureMeasurement, "Risk of bias arising from measurement of the exposure", []response.Question{
		{ID: "2.1", Text: "Does the measured exposure well characterise the exposure of interest?", Alphabet: response.GradedNo},
		{ID: "2.2", Text: "If Y/PY/WN/NI to 2.1: Was there error in measurement of the exposure at a single time point?", Alphabet: gradedYesNA},
		{ID: "2.3", Text: "If SN to 2.1: Was measurement or classification of the exposure differential?", Alphabet: gradedYesNA},
		{ID: "2.4", Text: "If SN to 2.1: Was there important non-differential error in measurement of the exposure?", Alphabet: gradedYesNA},
	}, exposureMeasurementTable.Evaluate)
}
