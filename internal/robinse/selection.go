package robinse

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// timingTable is the timing pathway. 3.1 is recorded on every leaf but does
// not change the result.
var timingTable = &rules.Table{
	Name: "domain_3.timing",
	Rules: []rules.Rule{
		{
			ID:     "domain_3.timing.low",
			Path:   []string{"3.1", "3.2"},
			When:   rules.In("3.2", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Effect of exposure constant over time",
		},
		{
			ID:     "domain_3.timing.some_concerns",
			Path:   []string{"3.1", "3.2"},
			When:   rules.Is("3.2", response.NoInformation),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether the effect is constant over time",
		},
		{
			ID:     "domain_3.timing.high",
			Path:   []string{"3.1", "3.2"},
			When:   rules.In("3.2", response.NoPN),
			Risk:   verdict.High,
			Reason: "Effect of exposure varies over time",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_3.timing.fallback",
		Path:   []string{"3.1", "3.2"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for timing",
	},
}

// selectionTable is the selection pathway.
var selectionTable = &rules.Table{
	Name: "domain_3.selection",
	Rules: []rules.Rule{
		{
			ID:     "domain_3.selection.high.after_start",
			Path:   []string{"3.3"},
			When:   rules.In("3.3", response.YesPY),
			Risk:   verdict.High,
			Reason: "Selection based on participant characteristics observed after the start of exposure",
		},
		{
			ID:     "domain_3.selection.some_concerns.after_start",
			Path:   []string{"3.3"},
			When:   rules.Is("3.3", response.NoInformation),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on selection after the start of exposure",
		},
		{
			ID:     "domain_3.selection.some_concerns.exposure",
			Path:   []string{"3.3", "3.4"},
			When:   rules.AllOf(rules.In("3.3", response.NoPN), rules.Is("3.4", response.NoInformation)),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on whether selection variables were influenced by exposure",
		},
		{
			ID:   "domain_3.selection.low",
			Path: []string{"3.3", "3.4", "3.5"},
			When: rules.AllOf(
				rules.In("3.3", response.NoPN),
				rules.In("3.4", response.NoPN),
				rules.In("3.5", response.NoPN),
			),
			Risk:   verdict.Low,
			Reason: "Selection variables influenced by neither exposure nor outcome",
		},
		{
			ID:   "domain_3.selection.high.outcome",
			Path: []string{"3.3", "3.4", "3.5"},
			When: rules.AllOf(
				rules.In("3.3", response.NoPN),
				rules.In("3.4", response.YesPY.With(response.NoPN...)),
				rules.In("3.5", response.YesPY),
			),
			Risk:   verdict.High,
			Reason: "Selection variables influenced by the outcome",
		},
		{
			ID:   "domain_3.selection.some_concerns.exposure_only",
			Path: []string{"3.3", "3.4", "3.5"},
			When: rules.AllOf(
				rules.In("3.3", response.NoPN),
				rules.In("3.4", response.YesPY),
				rules.In("3.5", response.NoPNNI),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Selection variables influenced by exposure but not clearly by the outcome",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_3.selection.fallback",
		Path:   []string{"3.3", "3.4", "3.5"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for selection of participants",
	},
}

// correctionTable is consulted only when a pathway is High.
var correctionTable = &rules.Table{
	Name: "domain_3.correction",
	Rules: []rules.Rule{
		{
			ID:     "domain_3.correction.corrected",
			Path:   []string{"3.6"},
			When:   rules.In("3.6", response.YesPY),
			Risk:   verdict.SomeConcerns,
			Reason: "Analysis corrected for the selection biases",
		},
		{
			ID:     "domain_3.correction.sensitivity_minimal",
			Path:   []string{"3.6", "3.7"},
			When:   rules.In("3.7", response.YesPY),
			Risk:   verdict.SomeConcerns,
			Reason: "Sensitivity analyses demonstrate minimal impact of the selection biases",
		},
		{
			ID:     "domain_3.correction.sensitivity_weak_no",
			Path:   []string{"3.6", "3.7"},
			When:   rules.Is("3.7", response.WeakNo),
			Risk:   verdict.High,
			Reason: "Sensitivity analyses do not rule out an important impact of the selection biases",
		},
		{
			ID:     "domain_3.correction.sensitivity_strong_no",
			Path:   []string{"3.6", "3.7"},
			When:   rules.Is("3.7", response.StrongNo),
			Risk:   verdict.VeryHigh,
			Reason: "Sensitivity analyses indicate a serious impact of the selection biases",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_3.fallback",
		Path:   []string{"3.6", "3.7"},
		Risk:   verdict.High,
		Reason: "Uncorrected selection or timing problem without reassuring sensitivity analyses",
	},
}

// decideSelectionTiming combines the two pathways. A High in either is
// reconsidered against correction and sensitivity analyses.
func decideSelectionTiming(a response.Answers) rules.Outcome {
	timing := timingTable.Evaluate(a)
	selection := selectionTable.Evaluate(a)

	switch {
	case timing.Risk == verdict.Low && selection.Risk == verdict.Low:
		out := rules.Join(timing, selection)
		out.Risk = verdict.Low
		out.Reason = "Low risk for both timing and selection of participants"
		return out
	case timing.Risk != verdict.High && selection.Risk != verdict.High:
		out := rules.Join(timing, selection)
		out.Risk = verdict.SomeConcerns
		out.Reason = "Some concerns: timing " + timing.Risk.String() + " (" + timing.Reason +
			"); selection " + selection.Risk.String() + " (" + selection.Reason + ")"
		return out
	}

	var high []string
	if timing.Risk == verdict.High {
		high = append(high, "timing ("+timing.Reason+")")
	}
	if selection.Risk == verdict.High {
		high = append(high, "selection ("+selection.Reason+")")
	}
	fix := correctionTable.Evaluate(a)
	out := rules.Join(timing, selection, fix)
	out.Risk = fix.Risk
	out.Reason = "High risk in " + joinAnd(high) + "; " + fix.Reason
	return out
}

func joinAnd(parts []string) string {
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}

func selectionTimingDomain() rules.Domain {
	return rules.NewDomain(SelectionTiming, "Risk of bias in selection of participants into the study (or into the analysis)", []response.Question{
		{ID: "3.1", Text: "Did the follow-up of participants begin at the start of the exposure?", Alphabet: response.Core},
		{ID: "3.2", Text: "Is it likely that the effect of exposure was constant over time?", Alphabet: response.Core},
		{ID: "3.3", Text: "Was selection of participants into the study (or into the analysis) based on participant characteristics observed after the start of exposure?", Alphabet: response.Core},
		{ID: "3.4", Text: "If N/PN to 3.3: Were the selection variables influenced by the exposure or a cause of the exposure?", Alphabet: response.CoreNA},
		{ID: "3.5", Text: "If Y/PY/N/PN to 3.4: Were the selection variables influenced by the outcome or a cause of the outcome?", Alphabet: response.CoreNA},
		{ID: "3.6", Text: "If a pathway is high risk: Is it likely that the analysis corrected for all of the potential selection biases identified?", Alphabet: response.CoreNA},
		{ID: "3.7", Text: "If N/PN/NI to 3.6: Did sensitivity analyses demonstrate that the likely impact of the potential selection biases was minimal?", Alphabet: gradedNoNA},
	}, decideSelectionTiming)
}
