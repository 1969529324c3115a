package robinse

import (
	"fmt"

	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// missingBranch is one route to question 5.10. A severe branch turns
// negative evidence into Very high rather than High.
type missingBranch struct {
	id     string
	path   []string
	when   rules.Predicate
	reason string
	severe bool
}

var (
	completeCase = rules.In("5.4", response.YesPYNI)
	imputed      = rules.AllOf(rules.In("5.4", response.NoPN), rules.In("5.7", response.YesPY))
	otherMethod  = rules.AllOf(rules.In("5.4", response.NoPN), rules.In("5.7", response.NoPN))
)

var missingBranches = []missingBranch{
	{
		id:   "complete_case.predictors",
		path: []string{"5.1-5.3", "5.4", "5.5", "5.6", "5.10"},
		when: rules.AllOf(
			completeCase,
			rules.In("5.5", response.NoPN),
			rules.In("5.6", response.Core.With(response.WeakYes)),
		),
		reason: "complete-case analysis with exclusion unrelated to the outcome",
	},
	{
		id:     "complete_case.exclusion_uncertain",
		path:   []string{"5.1-5.3", "5.4", "5.5", "5.10"},
		when:   rules.AllOf(completeCase, rules.In("5.5", weakYesNI)),
		reason: "complete-case analysis with exclusion possibly related to the outcome",
	},
	{
		id:     "complete_case.exclusion_related",
		path:   []string{"5.1-5.3", "5.4", "5.5", "5.10"},
		when:   rules.AllOf(completeCase, rules.Is("5.5", response.StrongYes)),
		reason: "complete-case analysis with exclusion strongly related to the outcome",
		severe: true,
	},
	{
		id:     "imputation.appropriate",
		path:   []string{"5.1-5.3", "5.4", "5.7", "5.8", "5.10"},
		when:   rules.AllOf(imputed, rules.In("5.8", response.YesPY)),
		reason: "appropriate imputation of missing values",
	},
	{
		id:     "imputation.poor",
		path:   []string{"5.1-5.3", "5.4", "5.7", "5.8", "5.10"},
		when:   rules.AllOf(imputed, rules.In("5.8", response.NoPNNI)),
		reason: "imputation of missing values that may not be appropriate",
		severe: true,
	},
	{
		id:     "method.appropriate",
		path:   []string{"5.1-5.3", "5.4", "5.7", "5.9", "5.10"},
		when:   rules.AllOf(otherMethod, rules.In("5.9", response.YesPY)),
		reason: "appropriate alternative method for missing data",
	},
	{
		id:     "method.poor",
		path:   []string{"5.1-5.3", "5.4", "5.7", "5.9", "5.10"},
		when:   rules.AllOf(otherMethod, rules.In("5.9", response.NoPNNI)),
		reason: "alternative method for missing data that may not be appropriate",
		severe: true,
	},
}

// evidenceRules expands a branch into its three 5.10 leaves.
func evidenceRules(b missingBranch) []rules.Rule {
	biased := verdict.High
	if b.severe {
		biased = verdict.VeryHigh
	}
	return []rules.Rule{
		{
			ID:     "domain_5." + b.id + ".evidence",
			Path:   b.path,
			When:   rules.AllOf(b.when, rules.In("5.10", response.YesPY)),
			Risk:   verdict.SomeConcerns,
			Reason: fmt.Sprintf("Evidence that the result is not biased, after %s", b.reason),
		},
		{
			ID:     "domain_5." + b.id + ".no_information",
			Path:   b.path,
			When:   rules.AllOf(b.when, rules.Is("5.10", response.NoInformation)),
			Risk:   verdict.SomeConcerns,
			Reason: fmt.Sprintf("No information on whether the result is biased, after %s", b.reason),
		},
		{
			ID:     "domain_5." + b.id + ".biased",
			Path:   b.path,
			When:   rules.AllOf(b.when, rules.In("5.10", response.NoPN)),
			Risk:   biased,
			Reason: fmt.Sprintf("No evidence that the result is not biased, after %s", b.reason),
		},
	}
}

func newMissingDataTable() *rules.Table {
	rs := []rules.Rule{
		{
			ID:     "domain_5.low.complete",
			Path:   []string{"5.1-5.3"},
			When:   rules.In("5.1-5.3", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Complete data for exposure, outcome and confounders for all, or nearly all, participants",
		},
		{
			ID:     "domain_5.complete_case.predictors_strong",
			Path:   []string{"5.1-5.3", "5.4", "5.5", "5.6"},
			When:   rules.AllOf(completeCase, rules.In("5.5", response.NoPN), rules.Is("5.6", response.StrongYes)),
			Risk:   verdict.SomeConcerns,
			Reason: "Complete-case analysis with predictors of missingness strongly accounted for in the model",
		},
	}
	for _, b := range missingBranches {
		rs = append(rs, evidenceRules(b)...)
	}
	return &rules.Table{
		Name:  MissingData,
		Rules: rs,
		Fallback: rules.Rule{
			ID:     "domain_5.fallback",
			Path:   []string{"5.1-5.3", "5.4", "5.5", "5.6", "5.7", "5.8", "5.9", "5.10"},
			Risk:   verdict.High,
			Reason: "Unclassified combination: missing data handling could not be shown to avoid bias",
		},
	}
}

var missingDataTable = newMissingDataTable()

func missingDataDomain() rules.Domain {
	return rules.NewDomain(MissingData, "Risk of bias due to missing data", []response.Question{
		{ID: "5.1-5.3", Text: "Were complete data on exposure status, the outcome and confounders available for all, or nearly all, participants?", Alphabet: response.Core},
		{ID: "5.4", Text: "If N/PN/NI to 5.1-5.3: Is the result based on a complete case analysis?", Alphabet: response.CoreNA},
		{ID: "5.5", Text: "If Y/PY/NI to 5.4: Was exclusion from the analysis because of missing data likely to be related to the true value of the outcome?", Alphabet: gradedYesNA},
		{ID: "5.6", Text: "If N/PN to 5.5: Were predictors of missingness included in the analysis model?", Alphabet: gradedYesNA},
		{ID: "5.7", Text: "If N/PN to 5.4: Was the analysis based on imputing missing values?", Alphabet: response.CoreNA},
		{ID: "5.8", Text: "If Y/PY to 5.7: Was the imputation appropriate?", Alphabet: response.CoreNA},
		{ID: "5.9", Text: "If N/PN to 5.7: Was an appropriate alternative method used to correct for bias due to missing data?", Alphabet: response.CoreNA},
		{ID: "5.10", Text: "Is there evidence that the result was not biased by missing data?", Alphabet: response.CoreNA},
	}, missingDataTable.Evaluate)
}
