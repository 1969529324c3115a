package rob2

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// aware: participants or carers knew the assigned intervention (or we cannot tell).
var aware = rules.AnyOf(
	rules.In("2.1", response.YesPYNI),
	rules.In("2.2", response.YesPYNI),
)

// fidelityTable is part 1 of the deviations domain (questions 2.1 to 2.5).
var fidelityTable = &rules.Table{
	Name: "domain_2.part1",
	Rules: []rules.Rule{
		{
			ID:     "domain_2.part1.low.unaware",
			Path:   []string{"2.1", "2.2"},
			When:   rules.AllOf(rules.In("2.1", response.NoPN), rules.In("2.2", response.NoPN)),
			Risk:   verdict.Low,
			Reason: "Participants and carers unaware of assigned intervention",
		},
		{
			ID:     "domain_2.part1.low.no_deviations",
			Path:   []string{"2.1", "2.2", "2.3"},
			When:   rules.AllOf(aware, rules.In("2.3", response.NoPN)),
			Risk:   verdict.Low,
			Reason: "Awareness present but no deviations arose because of the trial context",
		},
		{
			ID:   "domain_2.part1.high",
			Path: []string{"2.1", "2.2", "2.3", "2.4", "2.5"},
			When: rules.AllOf(
				aware,
				rules.In("2.3", response.YesPY),
				rules.In("2.4", response.YesPYNI),
				rules.In("2.5", response.NoPNNI),
			),
			Risk:   verdict.High,
			Reason: "Deviations arising from the trial context likely affected the outcome and were unbalanced between groups",
		},
		{
			ID:     "domain_2.part1.some_concerns.no_information",
			Path:   []string{"2.1", "2.2", "2.3"},
			When:   rules.AllOf(aware, rules.Is("2.3", response.NoInformation)),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether deviations arose because of the trial context",
		},
		{
			ID:   "domain_2.part1.some_concerns.no_effect",
			Path: []string{"2.1", "2.2", "2.3", "2.4"},
			When: rules.AllOf(
				aware,
				rules.In("2.3", response.YesPY),
				rules.In("2.4", response.NoPN),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Deviations occurred but were not likely to affect the outcome",
		},
		{
			ID:   "domain_2.part1.some_concerns.balanced",
			Path: []string{"2.1", "2.2", "2.3", "2.4", "2.5"},
			When: rules.AllOf(
				aware,
				rules.In("2.3", response.YesPY),
				rules.In("2.4", response.YesPY),
				rules.In("2.5", response.YesPY),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Deviations may have affected the outcome but were balanced between groups",
		},
		{
			ID:     "domain_2.part1.some_concerns.uncertain",
			Path:   []string{"2.1", "2.2", "2.3", "2.4", "2.5"},
			When:   rules.AllOf(aware, rules.In("2.3", response.YesPY)),
			Risk:   verdict.SomeConcerns,
			Reason: "Deviations occurred with uncertain impact or balance",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_2.part1.fallback",
		Path:   []string{"2.1", "2.2", "2.3", "2.4", "2.5"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for intervention fidelity",
	},
}

// analysisTable is part 2 of the deviations domain (questions 2.6 and 2.7).
var analysisTable = &rules.Table{
	Name: "domain_2.part2",
	Rules: []rules.Rule{
		{
			ID:     "domain_2.part2.low",
			Path:   []string{"2.6"},
			When:   rules.In("2.6", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Appropriate analysis used to estimate the effect of assignment",
		},
		{
			ID:     "domain_2.part2.high",
			Path:   []string{"2.6", "2.7"},
			When:   rules.AllOf(rules.In("2.6", response.NoPNNI), rules.In("2.7", response.YesPYNI)),
			Risk:   verdict.High,
			Reason: "Inappropriate analysis with potential for substantial impact on the result",
		},
		{
			ID:     "domain_2.part2.some_concerns",
			Path:   []string{"2.6", "2.7"},
			When:   rules.AllOf(rules.In("2.6", response.NoPNNI), rules.In("2.7", response.NoPN)),
			Risk:   verdict.SomeConcerns,
			Reason: "Inappropriate analysis but no substantial impact on the result",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_2.part2.fallback",
		Path:   []string{"2.6", "2.7"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for analysis approach",
	},
}

// decideDeviations combines the two parts: both Low gives Low, any High
// gives High, everything else gives some concerns.
func decideDeviations(a response.Answers) rules.Outcome {
	p1 := fidelityTable.Evaluate(a)
	p2 := analysisTable.Evaluate(a)

	out := rules.Join(p1, p2)
	switch {
	case p1.Risk == verdict.Low && p2.Risk == verdict.Low:
		out.Risk = verdict.Low
		out.Reason = "Low risk for both intervention fidelity and analysis approach"
	case p1.Risk == verdict.High && p2.Risk == verdict.High:
		out.Risk = verdict.High
		out.Reason = "High risk for both intervention fidelity and analysis approach: " + p1.Reason + "; " + p2.Reason
	case p1.Risk == verdict.High:
		out.Risk = verdict.High
		out.Reason = "High risk in part 1 (intervention fidelity): " + p1.Reason
	case p2.Risk == verdict.High:
		out.Risk = verdict.High
		out.Reason = "High risk in part 2 (analysis): " + p2.Reason
	default:
		out.Risk = verdict.SomeConcerns
		out.Reason = "Some concerns: " + partReason(p1, "intervention fidelity") + "; " + partReason(p2, "analysis")
	}
	return out
}

func partReason(o rules.Outcome, part string) string {
	return part + " " + o.Risk.String() + " (" + o.Reason + ")"
}

func deviationsDomain() rules.Domain {
	return rules.NewDomain(Deviations, "Bias due to deviations from intended interventions", []response.Question{
		{ID: "2.1", Text: "Were participants aware of their assigned intervention during the trial?", Alphabet: response.Core},
		{ID: "2.2", Text: "Were carers and people delivering the interventions aware of participants' assigned intervention during the trial?", Alphabet: response.Core},
		{ID: "2.3", Text: "If Y/PY/NI to 2.1 or 2.2: Were there deviations from the intended intervention that arose because of the trial context?", Alphabet: response.CoreNA},
		{ID: "2.4", Text: "If Y/PY to 2.3: Were these deviations likely to have affected the outcome?", Alphabet: response.CoreNA},
		{ID: "2.5", Text: "If Y/PY/NI to 2.4: Were these deviations from intended intervention balanced between groups?", Alphabet: response.CoreNA},
		{ID: "2.6", Text: "Was an appropriate analysis used to estimate the effect of assignment to intervention?", Alphabet: response.Core},
		{ID: "2.7", Text: "If N/PN/NI to 2.6: Was there potential for a substantial impact on the result of the failure to analyse participants in the group to which they were randomized?", Alphabet: response.CoreNA},
	}, decideDeviations)
}
