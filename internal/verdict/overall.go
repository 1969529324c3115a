package verdict

import (
	"fmt"
	"strings"

	"robkit/internal/response"
)

// Override is an assessor's replacement for a computed overall verdict.
type Override struct {
	Risk          RiskLevel `json:"risk" yaml:"risk"`
	Justification string    `json:"justification" yaml:"justification"`
}

// OverallVerdict is the combined classification of an instrument.
type OverallVerdict struct {
	Risk RiskLevel `json:"risk" yaml:"risk"`
	// Computed is the combinator's result before any override.
	Computed     RiskLevel `json:"computed" yaml:"computed"`
	Rationale    string    `json:"rationale" yaml:"rationale"`
	Contributing []string  `json:"contributing,omitempty" yaml:"contributing,omitempty"`
	Counts       Counts    `json:"counts" yaml:"counts"`
	Override     *Override `json:"override,omitempty" yaml:"override,omitempty"`
	Caveat       string    `json:"caveat,omitempty" yaml:"caveat,omitempty"`
}

// Interpretation is the fixed reading of an overall verdict: what it means
// for evidence synthesis and what a review team should do about it.
type Interpretation struct {
	Summary string `json:"summary" yaml:"summary"`
	// Confidence is the confidence in the study's result, when the
	// instrument rates it.
	Confidence      string   `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// Overridden reports whether an override replaced the computed value.
func (o OverallVerdict) Overridden() bool {
	return o.Override != nil && o.Risk != o.Computed
}

// ApplyOverride returns o with ov applied. An override equal to the computed
// value is a no-op and needs no justification; any other override must carry
// one. The rationale keeps the computed value and the justification.
func ApplyOverride(o OverallVerdict, ov *Override) (OverallVerdict, error) {
	if ov == nil || ov.Risk == o.Computed {
		return o, nil
	}
	if !ov.Risk.Valid() {
		return o, fmt.Errorf("override: %w: %d", ErrUnknownRiskLevel, int(ov.Risk))
	}
	justification := strings.TrimSpace(ov.Justification)
	if justification == "" {
		return o, fmt.Errorf("override %s to %s: %w", o.Computed, ov.Risk, ErrOverrideWithoutJustification)
	}

	o.Risk = ov.Risk
	o.Override = &Override{Risk: ov.Risk, Justification: justification}
	o.Rationale = fmt.Sprintf("%s [Override: changed from '%s' to '%s' - %s]",
		o.Rationale, o.Computed, ov.Risk, justification)
	return o, nil
}

// Collect checks that ls carries exactly one valid level for every domain in
// want, and returns the levels reordered to match want.
func Collect(scope string, want []string, ls []DomainLevel) ([]DomainLevel, error) {
	known := make(map[string]bool, len(want))
	for _, id := range want {
		known[id] = true
	}

	got := make(map[string]RiskLevel, len(ls))
	for _, l := range ls {
		if !known[l.Domain] {
			return nil, fmt.Errorf("%s: %w: %s", scope, ErrUnknownDomain, l.Domain)
		}
		if !l.Risk.Valid() {
			return nil, fmt.Errorf("%s: %s: %w: %d", scope, l.Domain, ErrUnknownRiskLevel, int(l.Risk))
		}
		if _, dup := got[l.Domain]; dup {
			return nil, fmt.Errorf("%s: domain %s given more than once", scope, l.Domain)
		}
		got[l.Domain] = l.Risk
	}

	out := make([]DomainLevel, 0, len(want))
	var missing []string
	for _, id := range want {
		r, ok := got[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, DomainLevel{Domain: id, Risk: r})
	}
	if len(missing) > 0 {
		return nil, &response.IncompleteInputError{Scope: scope, Missing: missing}
	}
	return out, nil
}
