package rob2

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// missingDataTable: any one of three sufficiency conditions gives Low.
var missingDataTable = &rules.Table{
	Name: MissingData,
	Rules: []rules.Rule{
		{
			ID:     "domain_3.low.complete",
			Path:   []string{"3.1"},
			When:   rules.In("3.1", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Outcome data available for all, or nearly all, randomized participants",
		},
		{
			ID:     "domain_3.low.not_biased",
			Path:   []string{"3.1", "3.2"},
			When:   rules.In("3.2", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Evidence that the result was not biased by missing outcome data",
		},
		{
			ID:     "domain_3.low.independent",
			Path:   []string{"3.1", "3.2", "3.3"},
			When:   rules.In("3.3", response.NoPN),
			Risk:   verdict.Low,
			Reason: "Missingness in the outcome could not depend on its true value",
		},
		{
			ID:   "domain_3.high",
			Path: []string{"3.1", "3.2", "3.3", "3.4"},
			When: rules.AllOf(
				rules.In("3.1", response.NoPNNI),
				rules.In("3.2", response.NoPN),
				rules.In("3.3", response.YesPYNI),
				rules.In("3.4", response.YesPYNI),
			),
			Risk:   verdict.High,
			Reason: "Incomplete outcome data, no evidence of an unbiased result, and missingness likely depends on the true value",
		},
		{
			ID:   "domain_3.some_concerns.unlikely_dependence",
			Path: []string{"3.1", "3.2", "3.3", "3.4"},
			When: rules.AllOf(
				rules.In("3.1", response.NoPNNI),
				rules.In("3.2", response.NoPN),
				rules.In("3.3", response.YesPYNI),
				rules.In("3.4", response.NoPN),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Missingness could depend on the true value but is unlikely to have done so",
		},
		{
			ID:     "domain_3.some_concerns.no_information",
			Path:   []string{"3.1", "3.2", "3.3"},
			When:   rules.AllOf(rules.Is("3.2", response.NoInformation), rules.In("3.3", response.YesPYNI)),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on evidence of an unbiased result and missingness could depend on the true value",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_3.fallback",
		Path:   []string{"3.1", "3.2", "3.3", "3.4"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination: some missing outcome data with uncertain potential for bias",
	},
}

func missingDataDomain() rules.Domain {
	return rules.NewDomain(MissingData, "Bias due to missing outcome data", []response.Question{
		{ID: "3.1", Text: "Were data for this outcome available for all, or nearly all, participants randomized?", Alphabet: response.Core},
		{ID: "3.2", Text: "If N/PN/NI to 3.1: Is there evidence that the result was not biased by missing outcome data?", Alphabet: response.CoreNA},
		{ID: "3.3", Text: "If N/PN to 3.2: Could missingness in the outcome depend on its true value?", Alphabet: response.CoreNA},
		{ID: "3.4", Text: "If Y/PY/NI to 3.3: Is it likely that missingness in the outcome depended on its true value?", Alphabet: response.CoreNA},
	}, missingDataTable.Evaluate)
}
