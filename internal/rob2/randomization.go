package rob2

import (
	"strings"

	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var randomizationTable = &rules.Table{
	Name: Randomization,
	Rules: []rules.Rule{
		{
			ID:   "domain_1.low",
			Path: []string{"1.1", "1.2", "1.3"},
			When: rules.AllOf(
				rules.In("1.2", response.YesPY),
				rules.In("1.3", response.NoPNNI),
				rules.In("1.1", response.YesPYNI),
			),
			Risk:   verdict.Low,
			Reason: "Allocation sequence concealed and baseline differences do not suggest a problem with randomization",
		},
		{
			ID:     "domain_1.high.not_concealed",
			Path:   []string{"1.2"},
			When:   rules.In("1.2", response.NoPN),
			Risk:   verdict.High,
			Reason: "Allocation sequence not concealed",
		},
		{
			ID:   "domain_1.high.unclear_concealment_imbalance",
			Path: []string{"1.2", "1.3"},
			When: rules.AllOf(
				rules.Is("1.2", response.NoInformation),
				rules.In("1.3", response.YesPY),
			),
			Risk:   verdict.High,
			Reason: "No information on concealment and baseline differences suggest a problem with randomization",
		},
		{
			ID:   "domain_1.high.non_random_imbalance",
			Path: []string{"1.1", "1.3"},
			When: rules.AllOf(
				rules.In("1.1", response.NoPN),
				rules.In("1.3", response.YesPY),
			),
			Risk:   verdict.High,
			Reason: "Non-random allocation sequence with baseline differences suggesting a problem with randomization",
		},
		{
			ID:   "domain_1.some_concerns",
			Path: []string{"1.1", "1.2", "1.3"},
			When: rules.AnyOf(
				rules.In("1.1", response.NoPN),
				rules.Is("1.2", response.NoInformation),
				rules.In("1.3", response.YesPY),
			),
			Risk:    verdict.SomeConcerns,
			Explain: randomizationConcerns,
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_1.fallback",
		Path:   []string{"1.1", "1.2", "1.3"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination: neither the low nor the high risk criteria are met",
	},
}

func randomizationConcerns(a response.Answers) string {
	var concerns []string
	if a.In("1.1", response.NoPN) {
		concerns = append(concerns, "allocation sequence not random")
	}
	if a.Is("1.2", response.NoInformation) {
		concerns = append(concerns, "no information on allocation concealment")
	}
	if a.In("1.3", response.YesPY) {
		concerns = append(concerns, "baseline differences suggest a problem with randomization")
	}
	return "Some concerns: " + strings.Join(concerns, "; ")
}

func randomizationDomain() rules.Domain {
	return rules.NewDomain(Randomization, "Bias arising from the randomization process", []response.Question{
		{ID: "1.1", Text: "Was the allocation sequence random?", Alphabet: response.Core},
		{ID: "1.2", Text: "Was the allocation sequence concealed until participants were enrolled and assigned to interventions?", Alphabet: response.Core},
		{ID: "1.3", Text: "Did baseline differences between intervention groups suggest a problem with the randomization process?", Alphabet: response.Core},
	}, randomizationTable.Evaluate)
}
