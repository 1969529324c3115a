package robinse

import (
	"fmt"

	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var selectionQuestions = []string{"7.2", "7.3", "7.4", "7.5"}

var reportedPath = []string{"7.1", "7.2", "7.3", "7.4", "7.5"}

// selections returns a predicate on the number of Y/PY answers across the
// four selection questions. It never matches when any of them is NA.
func selections(match func(yes, ni int) bool) rules.Predicate {
	return func(a response.Answers) bool {
		if a.Count(response.NA, selectionQuestions...) > 0 {
			return false
		}
		return match(a.Count(response.YesPY, selectionQuestions...), a.Count(response.NI, selectionQuestions...))
	}
}

func explainSelections(a response.Answers) string {
	return fmt.Sprintf("Result likely selected on the basis of the results (%d of %d selection questions answered Y/PY)",
		a.Count(response.YesPY, selectionQuestions...), len(selectionQuestions))
}

var reportedResultsTable = &rules.Table{
	Name: ReportedResults,
	Rules: []rules.Rule{
		{
			ID:     "domain_7.low.plan",
			Path:   []string{"7.1"},
			When:   rules.In("7.1", response.YesPY),
			Risk:   verdict.Low,
			Reason: "Result reported in accordance with a pre-specified analysis plan",
		},
		{
			ID:     "domain_7.low.no_selection",
			Path:   reportedPath,
			When:   selections(func(yes, ni int) bool { return yes == 0 && ni == 0 }),
			Risk:   verdict.Low,
			Reason: "No indication of selection of the reported result",
		},
		{
			ID:     "domain_7.some_concerns.no_information",
			Path:   reportedPath,
			When:   selections(func(yes, ni int) bool { return yes == 0 && ni > 0 }),
			Risk:   verdict.SomeConcerns,
			Reason: "No information on selection of the reported result for at least one question",
		},
		{
			ID:      "domain_7.high.selected",
			Path:    reportedPath,
			When:    selections(func(yes, _ int) bool { return yes >= 1 && yes <= 2 }),
			Risk:    verdict.High,
			Explain: explainSelections,
		},
		{
			ID:      "domain_7.very_high.selected",
			Path:    reportedPath,
			When:    selections(func(yes, _ int) bool { return yes >= 3 }),
			Risk:    verdict.VeryHigh,
			Explain: explainSelections,
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_7.fallback",
		Path:   reportedPath,
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for selection of the reported result",
	},
}

func reportedResultsDomain() rules.Domain {
	return rules.NewDomain(ReportedResults, "Risk of bias in selection of the reported result", []response.Question{
		{ID: "7.1", Text: "Was the result reported in accordance with an available, pre-determined analysis plan?", Alphabet: response.Core},
		{ID: "7.2", Text: "If N/PN/NI to 7.1: Is the reported result likely to have been selected from multiple exposure measurements?", Alphabet: response.CoreNA},
		{ID: "7.3", Text: "If N/PN/NI to 7.1: Is the reported result likely to have been selected from multiple outcome measurements?", Alphabet: response.CoreNA},
		{ID: "7.4", Text: "If N/PN/NI to 7.1: Is the reported result likely to have been selected from multiple analyses of the data?", Alphabet: response.CoreNA},
		{ID: "7.5", Text: "If N/PN/NI to 7.1: Is the reported result likely to have been selected from multiple subgroups?", Alphabet: response.CoreNA},
	}, reportedResultsTable.Evaluate)
}
