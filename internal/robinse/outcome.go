package robinse

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var assessorsAware = rules.AllOf(rules.In("6.1", response.NoPNNI), rules.In("6.2", response.YesPYNI))

var outcomeMeasurementTable = &rules.Table{
	Name: OutcomeMeasurement,
	Rules: []rules.Rule{
		{
			ID:     "domain_6.high.differential",
			Path:   []string{"6.1"},
			When:   rules.In("6.1", response.YesPY),
			Risk:   verdict.High,
			Reason: "Measurement of the outcome differed by exposure status",
		},
		{
			ID:     "domain_6.low.unaware",
			Path:   []string{"6.1", "6.2"},
			When:   rules.AllOf(rules.In("6.1", response.NoPNNI), rules.In("6.2", response.NoPN)),
			Risk:   verdict.Low,
			Reason: "Outcome assessors unaware of the exposure history",
		},
		{
			ID:     "domain_6.low.not_influenced",
			Path:   []string{"6.1", "6.2", "6.3"},
			When:   rules.AllOf(assessorsAware, rules.In("6.3", response.NoPN)),
			Risk:   verdict.Low,
			Reason: "Assessors aware of exposure history but assessment could not be influenced by it",
		},
		{
			ID:     "domain_6.some_concerns.possible_influence",
			Path:   []string{"6.1", "6.2", "6.3"},
			When:   rules.AllOf(assessorsAware, rules.In("6.3", weakYesNI)),
			Risk:   verdict.SomeConcerns,
			Reason: "Assessment could have been influenced by knowledge of exposure history",
		},
		{
			ID:     "domain_6.high.influenced",
			Path:   []string{"6.1", "6.2", "6.3"},
			When:   rules.AllOf(assessorsAware, rules.Is("6.3", response.StrongYes)),
			Risk:   verdict.High,
			Reason: "Assessment strongly influenced by knowledge of exposure history",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_6.fallback",
		Path:   []string{"6.1", "6.2", "6.3"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for measurement of the outcome",
	},
}

func outcomeMeasurementDomain() rules.Domain {
	return rules.NewDomain(OutcomeMeasurement, "Risk of bias in measurement of the outcome", []response.Question{
		{ID: "6.1", Text: "Could measurement or ascertainment of the outcome have differed between exposure groups or levels of exposure?", Alphabet: response.Core},
		{ID: "6.2", Text: "If N/PN/NI to 6.1: Were outcome assessors aware of the exposure history of study participants?", Alphabet: response.CoreNA},
		{ID: "6.3", Text: "If Y/PY/NI to 6.2: Could assessment of the outcome have been influenced by knowledge of the exposure history?", Alphabet: gradedYesNA},
	}, outcomeMeasurementTable.Evaluate)
}
