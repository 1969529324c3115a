package robinse

import (
	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

var postExposureTable = &rules.Table{
	Name: PostExposure,
	Rules: []rules.Rule{
		{
			ID:     "domain_4.low",
			Path:   []string{"4.1"},
			When:   rules.In("4.1", response.NoPN),
			Risk:   verdict.Low,
			Reason: "No post-exposure interventions influenced by prior exposure",
		},
		{
			ID:     "domain_4.some_concerns.corrected",
			Path:   []string{"4.1", "4.2"},
			When:   rules.AllOf(rules.In("4.1", response.YesPYNI), rules.In("4.2", response.YesPY)),
			Risk:   verdict.SomeConcerns,
			Reason: "Post-exposure interventions present but the analysis likely corrected for their effect",
		},
		{
			ID:     "domain_4.high.not_corrected",
			Path:   []string{"4.1", "4.2"},
			When:   rules.AllOf(rules.In("4.1", response.YesPYNI), rules.In("4.2", response.NoPNNI)),
			Risk:   verdict.High,
			Reason: "Post-exposure interventions present and the analysis did not correct for their effect",
		},
	},
	Fallback: rules.Rule{
		ID:     "domain_4.fallback",
		Path:   []string{"4.1", "4.2"},
		Risk:   verdict.SomeConcerns,
		Reason: "Unclassified combination for post-exposure interventions",
	},
}

func postExposureDomain() rules.Domain {
	return rules.NewDomain(PostExposure, "Risk of bias due to post-exposure interventions", []response.Question{
		{ID: "4.1", Text: "Was there a deviation from the intended exposure, in the form of a post-exposure intervention influenced by prior exposure?", Alphabet: response.Core},
		{ID: "4.2", Text: "If Y/PY/NI to 4.1: Is it likely that the analysis corrected for the effect of these post-exposure interventions?", Alphabet: response.CoreNA},
	}, postExposureTable.Evaluate)
}
