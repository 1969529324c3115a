package rob2

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var selectiveReportingTable = &rules.Table{
	Name: SelectiveReporting,
	Rules: []rules.Rule{
		{
			ID:     "domain_5.high.outcome_selection",
			Path:   []string{"5.2"},
			When:   rules.In("5.2", response.YesPY),
			Risk:   verdict.High,
			Reason: "Result likely selected from multiple eligible outcome measurements on the basis of the results",
		},
		{
			ID:     "domain_5.high.analysis_selection",
			Path:   []string{"5.2", "5.3"},
			When:   rules.In("5.3", response.YesPY),
			Risk:   verdict.High,
			Reason: "Result likely selected from multiple eligible analyses on the basis of the results",
		},
		{
			ID:   "domain_5.low",
			Path: []string{"5.1", "5.2", "5.3"},
			When: rules.AllOf(
				rules.In("5.1", response.YesPY),
				rules.In("5.2", response.NoPN),
				rules.In("5.3", response.NoPN),
			),
			Risk:   verdict.Low,
			Reason: "Analysed according to a pre-specified plan with no indication of selective reporting",
		},
		{
			ID:   "domain_5.some_concerns.no_plan",
			Path: []string{"5.1", "5.2", "5.3"},
			When: rules.AllOf(
				rules.In("5.1", response.NoPNNI),
				rules.In("5.2", response.NoPN),
				rules.In("5.3", response.NoPN),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "No pre-specified analysis plan, but no indication of selective reporting",
		},
		{
			ID:   "domain_5.some_concerns.no_information",
			Path: []string{"5.1", "5.2", "5.3"},
			When: rules.AllOf(
				rules.In("5.2", response.NoPNNI),
				rules.In("5.3", response.NoPNNI),
				rules.AnyOf(rules.Is("5.2", response.NoInformation), rules.Is("5.3", response.NoInformation)),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Insufficient information on potential selection of the reported result",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_5.fallback",
		Path:   []string{"5.1", "5.2", "5.3"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination: unclear evidence regarding selective reporting",
	},
}

func selectiveReportingDomain() rules.Domain {
	return rules.NewDomain(SelectiveReporting, "Bias in selection of the reported result", []response.Question{
		{ID: "5.1", Text: "Were the data that produced this result analysed in accordance with a pre-specified analysis plan that was finalized before unblinded outcome data were available for analysis?", Alphabet: response.Core},
		{ID: "5.2", Text: "Is the numerical result being assessed likely to have been selected, on the basis of the results, from multiple eligible outcome measurements within the outcome domain?", Alphabet: response.Core},
		{ID: "5.3", Text: "Is the numerical result being assessed likely to have been selected, on the basis of the results, from multiple eligible analyses of the data?", Alphabet: response.Core},
	}, selectiveReportingTable.Evaluate)
}
