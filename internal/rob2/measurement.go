package rob2

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var (
	methodAppropriate = rules.In("4.1", response.NoPNNI)
	consistent        = rules.In("4.2", response.NoPN)
	blinded           = rules.In("4.3", response.NoPN)
	cannotInfluence   = rules.AllOf(rules.In("4.3", response.YesPYNI), rules.In("4.4", response.NoPN))
)

// outcomeMeasurementTable: any one of three severity conditions gives High;
// Low needs appropriateness, consistency and protection from knowledge of
// the intervention.
var outcomeMeasurementTable = &rules.Table{
	Name: OutcomeMeasurement,
	Rules: []rules.Rule{
		{
			ID:     "domain_4.high.inappropriate_method",
			Path:   []string{"4.1"},
			When:   rules.In("4.1", response.YesPY),
			Risk:   verdict.High,
			Reason: "Method of measuring the outcome was inappropriate",
		},
		{
			ID:     "domain_4.high.differed",
			Path:   []string{"4.1", "4.2"},
			When:   rules.In("4.2", response.YesPY),
			Risk:   verdict.High,
			Reason: "Measurement or ascertainment of the outcome could have differed between groups",
		},
		{
			ID:   "domain_4.high.influenced",
			Path: []string{"4.1", "4.2", "4.3", "4.4", "4.5"},
			When: rules.AllOf(
				rules.In("4.3", response.YesPYNI),
				rules.In("4.4", response.YesPYNI),
				rules.In("4.5", response.YesPYNI),
			),
			Risk:   verdict.High,
			Reason: "Assessment of the outcome was likely influenced by knowledge of the intervention received",
		},
		{
			ID:     "domain_4.low.blinded",
			Path:   []string{"4.1", "4.2", "4.3"},
			When:   rules.AllOf(methodAppropriate, consistent, blinded),
			Risk:   verdict.Low,
			Reason: "Appropriate method, consistent between groups, and outcome assessors blinded",
		},
		{
			ID:     "domain_4.low.not_influenceable",
			Path:   []string{"4.1", "4.2", "4.3", "4.4"},
			When:   rules.AllOf(methodAppropriate, consistent, cannotInfluence),
			Risk:   verdict.Low,
			Reason: "Appropriate method, consistent between groups, and assessment could not be influenced by knowledge of the intervention",
		},
		{
			ID:   "domain_4.some_concerns.unlikely_influenced",
			Path: []string{"4.1", "4.2", "4.3", "4.4", "4.5"},
			When: rules.AllOf(
				methodAppropriate,
				consistent,
				rules.In("4.3", response.YesPYNI),
				rules.In("4.4", response.YesPYNI),
				rules.In("4.5", response.NoPN),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Assessment could have been influenced by knowledge of the intervention but is unlikely to have been",
		},
		{
			ID:     "domain_4.some_concerns.no_information_blinded",
			Path:   []string{"4.1", "4.2", "4.3"},
			When:   rules.AllOf(methodAppropriate, rules.Is("4.2", response.NoInformation), blinded),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether measurement differed between groups, but assessors were blinded",
		},
		{
			ID:     "domain_4.some_concerns.no_information_not_influenceable",
			Path:   []string{"4.1", "4.2", "4.3", "4.4"},
			When:   rules.AllOf(methodAppropriate, rules.Is("4.2", response.NoInformation), cannotInfluence),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether measurement differed between groups, but assessment could not be influenced",
		},
		{
			ID:     "domain_4.some_concerns.no_information",
			Path:   []string{"4.1", "4.2"},
			When:   rules.AllOf(methodAppropriate, rules.Is("4.2", response.NoInformation)),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether measurement of the outcome differed between groups",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_4.fallback",
		Path:   []string{"4.1", "4.2", "4.3", "4.4", "4.5"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination with some potential for measurement bias",
	},
}

func outcomeMeasurementDomain() rules.Domain {
	return rules.NewDomain(OutcomeMeasurement, "Bias in measurement of the outcome", []response.Question{
		{ID: "4.1", Text: "Was the method of measuring the outcome inappropriate?", Alphabet: response.Core},
		{ID: "4.2", Text: "Could measurement or ascertainment of the outcome have differed between intervention groups?", Alphabet: response.Core},
		{ID: "4.3", Text: "If N/PN/NI to 4.1 and 4.2: Were outcome assessors aware of the intervention received by study participants?", Alphabet: response.CoreNA},
		{ID: "4.4", Text: "If Y/PY/NI to 4.3: Could assessment of the outcome have been influenced by knowledge of intervention received?", Alphabet: response.CoreNA},
		{ID: "4.5", Text: "If Y/PY/NI to 4.4: Is it likely that assessment of the outcome was influenced by knowledge of intervention received?", Alphabet: response.CoreNA},
	}, outcomeMeasurementTable.Evaluate)
}
