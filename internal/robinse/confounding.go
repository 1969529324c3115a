package robinse

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// otherThanStrongNoNI is every substantive answer to a graded-no question
// that does not signal a serious problem.
var otherThanStrongNoNI = response.Group{
	response.Yes, response.ProbablyYes, response.ProbablyNo, response.No, response.WeakNo,
}

// controlled is the variant A root branch that continues past 1.1.
var controlled = rules.In("1.1", response.YesPY.With(weakNoVPY...))

var negativeNotStrong = response.Group{response.No, response.ProbablyNo, response.WeakNo}

// confoundingB is rooted at the appropriate-analysis-method question.
var confoundingB = &rules.Table{
	Name: Confounding,
	Rules: []rules.Rule{
		{
			ID:     "domain_1.b.high.inappropriate_method",
			Path:   []string{"1.1"},
			When:   rules.In("1.1", response.NoPNNI),
			Risk:   verdict.High,
			Reason: "Analysis method not appropriate to control for confounding",
		},
		{
			ID:     "domain_1.b.high.uncontrolled",
			Path:   []string{"1.1", "1.2"},
			When:   rules.AllOf(rules.In("1.1", response.YesPY), rules.In("1.2", strongNoNI)),
			Risk:   verdict.High,
			Reason: "Important confounding factors not controlled for",
		},
		{
			ID:   "domain_1.b.very_high.post_exposure",
			Path: []string{"1.1", "1.2", "1.4"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", weakNoVPY),
				rules.In("1.4", response.YesPY),
			),
			Risk:   verdict.VeryHigh,
			Reason: "Partial control for confounding with adjustment for variables measured after the start of exposure",
		},
		{
			ID:   "domain_1.b.some_concerns.partial_negative_controls",
			Path: []string{"1.1", "1.2", "1.4", "1.5"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", weakNoVPY),
				rules.In("1.4", response.NoPNNI),
				rules.In("1.5", response.YesPY),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Partial control for confounding and negative controls suggest serious uncontrolled confounding",
		},
		{
			ID:   "domain_1.b.low.partial",
			Path: []string{"1.1", "1.2", "1.4", "1.5"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", weakNoVPY),
				rules.In("1.4", response.NoPNNI),
				rules.In("1.5", response.NoPNNI),
			),
			Risk:   verdict.Low,
			Reason: "Confounding largely controlled, no adjustment for post-exposure variables and no signal from negative controls",
		},
		{
			ID:   "domain_1.b.high.mismeasured",
			Path: []string{"1.1", "1.2", "1.3"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", response.YesPY),
				rules.In("1.3", strongNoNI),
			),
			Risk:   verdict.High,
			Reason: "Confounding factors not measured validly and reliably",
		},
		{
			ID:   "domain_1.b.some_concerns.negative_controls",
			Path: []string{"1.1", "1.2", "1.3", "1.5"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", response.YesPY),
				rules.In("1.3", otherThanStrongNoNI),
				rules.In("1.5", response.YesPY),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Confounding controlled but negative controls suggest serious uncontrolled confounding",
		},
		{
			ID:   "domain_1.b.low",
			Path: []string{"1.1", "1.2", "1.3", "1.5"},
			When: rules.AllOf(
				rules.In("1.1", response.YesPY),
				rules.In("1.2", response.YesPY),
				rules.In("1.3", otherThanStrongNoNI),
				rules.In("1.5", response.NoPNNI),
			),
			Risk:   verdict.Low,
			Reason: "Important confounding factors controlled for and measured validly and reliably",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_1.fallback",
		Path:   []string{"1.1", "1.2", "1.3", "1.4", "1.5"},
		Risk:   verdict.High,
		Reason: "Unclassified combination: confounding cannot be considered controlled",
	},
}

// confoundingA is rooted at the controlled-for-important-factors question.
var confoundingA = &rules.Table{
	Name: Confounding,
	Rules: []rules.Rule{
		{
			ID:     "domain_1.a.high.uncontrolled",
			Path:   []string{"1.1"},
			When:   rules.In("1.1", strongNoNI),
			Risk:   verdict.High,
			Reason: "Important confounding factors not controlled for",
		},
		{
			ID:   "domain_1.a.some_concerns.negative_controls",
			Path: []string{"1.1", "1.3", "1.4"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.YesPY),
				rules.In("1.4", response.YesPY),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Negative controls suggest serious uncontrolled confounding",
		},
		{
			ID:   "domain_1.a.low.post_exposure_controlled",
			Path: []string{"1.1", "1.3", "1.4"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.YesPY),
				rules.In("1.4", response.NoPNNI),
			),
			Risk:   verdict.Low,
			Reason: "Confounding controlled and no signal from negative controls",
		},
		{
			ID:   "domain_1.a.high.mismeasured",
			Path: []string{"1.1", "1.3", "1.2"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.NoPN),
				rules.In("1.2", strongNoNI),
			),
			Risk:   verdict.High,
			Reason: "Confounding factors not measured validly and reliably",
		},
		{
			ID:   "domain_1.a.very_high",
			Path: []string{"1.1", "1.3", "1.2"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.NoPN),
				rules.In("1.2", response.YesPY),
			),
			Risk:   verdict.VeryHigh,
			Reason: "No control for post-exposure variables where the measured confounders indicate a very high risk",
		},
		{
			ID:   "domain_1.a.some_concerns.measured_negative_controls",
			Path: []string{"1.1", "1.3", "1.2", "1.4"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.NoPN),
				rules.In("1.2", negativeNotStrong),
				rules.In("1.4", response.YesPY),
			),
			Risk:   verdict.SomeConcerns,
			Reason: "Negative controls suggest serious uncontrolled confounding",
		},
		{
			ID:   "domain_1.a.low",
			Path: []string{"1.1", "1.3", "1.2", "1.4"},
			When: rules.AllOf(
				controlled,
				rules.In("1.3", response.NoPN),
				rules.In("1.2", negativeNotStrong),
				rules.In("1.4", response.NoPNNI),
			),
			Risk:   verdict.Low,
			Reason: "Confounding controlled with no signal from negative controls",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_1.fallback",
		Path:   []string{"1.1", "1.3", "1.2", "1.4"},
		Risk:   verdict.High,
		Reason: "Unclassified combination: confounding cannot be considered controlled",
	},
}

const confoundingName = "Risk of bias due to confounding"

func confoundingDomain(v Variant) rules.Domain {
	if v == VariantA {
		return rules.NewDomain(Confounding, confoundingName, []response.Question{
			{ID: "1.1", Text: "Did the authors control for all the important confounding factors for which this was necessary?", Alphabet: response.Controlled},
			{ID: "1.2", Text: "If N/PN to 1.3: Were confounding factors that were controlled for measured validly and reliably?", Alphabet: gradedNoNA},
			{ID: "1.3", Text: "If Y/PY/WN to 1.1: Did the authors control for any post-exposure variables that could have been affected by the exposure?", Alphabet: response.CoreNA},
			{ID: "1.4", Text: "Did the use of negative controls, or other considerations, suggest serious uncontrolled confounding?", Alphabet: response.CoreNA},
		}, confoundingA.Evaluate)
	}
	return rules.NewDomain(Confounding, confoundingName, []response.Question{
		{ID: "1.1", Text: "Was an appropriate analysis method used to control for confounding?", Alphabet: response.Core},
		{ID: "1.2", Text: "If Y/PY to 1.1: Did the authors control for all the important confounding factors for which this was necessary?", Alphabet: controlledNA},
		{ID: "1.3", Text: "If Y/PY to 1.2: Were confounding factors that were controlled for measured validly and reliably?", Alphabet: gradedNoNA},
		{ID: "1.4", Text: "If WN to 1.2: Did the authors control for any variables measured after the start of exposure?", Alphabet: response.CoreNA},
		{ID: "1.5", Text: "Did the use of negative controls, or other considerations, suggest serious uncontrolled confounding?", Alphabet: response.CoreNA},
	}, confoundingB.Evaluate)
}
