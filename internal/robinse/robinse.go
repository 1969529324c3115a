// Package robinse implements the seven-domain risk-of-bias instrument for
// non-randomized studies of exposures, including both official decision
// trees for the confounding domain.
package robinse

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// Name identifies the instrument in answer files and on the command line.
const Name = "robins-e"

// Domain IDs.
const (
	Confounding         = "domain_1"
	ExposureMeasurement = "domain_2"
	SelectionTiming     = "domain_3"
	PostExposure        = "domain_4"
	MissingData         = "domain_5"
	OutcomeMeasurement  = "domain_6"
	ReportedResults     = "domain_7"
)

// LowCaveat qualifies every Low verdict of this instrument.
const LowCaveat = "Low risk of bias (except for concerns about uncontrolled confounding)"

// ErrUnknownVariant is returned for a confounding variant other than A or B.
var ErrUnknownVariant = errors.New("unknown confounding variant")

// Variant selects the decision tree of the confounding domain.
type Variant string

const (
	// VariantA is rooted at "controlled for all the important confounding factors?".
	VariantA Variant = "A"
	// VariantB is rooted at "appropriate analysis method?".
	VariantB Variant = "B"
)

// DefaultVariant is used when an assessment does not name one.
const DefaultVariant = VariantB

// ParseVariant reads "A", "b", "variant_a" and similar spellings. An empty
// string gives DefaultVariant.
func ParseVariant(s string) (Variant, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(strings.TrimPrefix(v, "VARIANT"), "_")
	v = strings.TrimSpace(v)
	switch v {
	case "":
		return DefaultVariant, nil
	case "A":
		return VariantA, nil
	case "B":
		return VariantB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Alphabets of conditionally asked graded questions.
var (
	gradedNoNA   = response.GradedNo.With(response.NotApplicable)
	gradedYesNA  = response.GradedYes.With(response.NotApplicable)
	controlledNA = response.Controlled.With(response.NotApplicable)
)

// Predicate groups for graded answers.
var (
	strongNoNI = response.Group{response.StrongNo, response.NoInformation}
	weakNoVPY  = response.Group{response.WeakNo, response.VeryProbablyYes}
	weakYesNI  = response.Group{response.WeakYes, response.NoInformation}
)

// Instrument is the exposure instrument for one confounding variant.
type Instrument struct {
	variant Variant
	domains []rules.Domain
	byID    map[string]rules.Domain
}

// New returns the instrument with its seven domains in published order.
func New(v Variant) (*Instrument, error) {
	if v != VariantA && v != VariantB {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
	ds := []rules.Domain{
		confoundingDomain(v),
		exposureMeasurementDomain(),
		selectionTimingDomain(),
		postExposureDomain(),
		missingDataDomain(),
		outcomeMeasurementDomain(),
		reportedResultsDomain(),
	}
	byID := make(map[string]rules.Domain, len(ds))
	for _, d := range ds {
		byID[d.ID()] = d
	}
	return &Instrument{variant: v, domains: ds, byID: byID}, nil
}

func (i *Instrument) Name() string     { return Name }
func (i *Instrument) Variant() Variant { return i.variant }

func (i *Instrument) Title() string {
	return fmt.Sprintf("ROBINS-E (non-randomized studies of exposures, confounding variant %s)", i.variant)
}

// Domains returns the domains in published order.
func (i *Instrument) Domains() []rules.Domain { return i.domains }

// Domain looks up a domain by ID.
func (i *Instrument) Domain(id string) (rules.Domain, bool) {
	d, ok := i.byID[id]
	return d, ok
}

// Caveat returns LowCaveat for Low and nothing otherwise.
func (i *Instrument) Caveat(r verdict.RiskLevel) string {
	if r == verdict.Low {
		return LowCaveat
	}
	return ""
}

// Levels is the full four-level scale.
func (i *Instrument) Levels() []verdict.RiskLevel { return slices.Clone(verdict.Levels) }

// Interpret reads an overall verdict. See Interpret.
func (i *Instrument) Interpret(o verdict.OverallVerdict) verdict.Interpretation { return Interpret(o) }

// Combine derives the overall verdict. See Combine.
func (i *Instrument) Combine(ls []verdict.DomainLevel) (verdict.OverallVerdict, error) {
	return Combine(ls)
}

// AssessThreat reads raw threat labels and reduces them. See AssessThreat.
func (i *Instrument) AssessThreat(raw map[string]string) (ThreatVerdict, error) {
	ts, err := ParseThreats(raw)
	if err != nil {
		return ThreatVerdict{}, fmt.Errorf("%s: %w", Name, err)
	}
	return AssessThreat(ts)
}

var domainOrder = []string{
	Confounding, ExposureMeasurement, SelectionTiming, PostExposure,
	MissingData, OutcomeMeasurement, ReportedResults,
}

var labels = map[string]string{
	Confounding:         "Domain 1: Confounding",
	ExposureMeasurement: "Domain 2: Measurement of Exposure",
	SelectionTiming:     "Domain 3: Selection and Timing",
	PostExposure:        "Domain 4: Post-Exposure Interventions",
	MissingData:         "Domain 5: Missing Data",
	OutcomeMeasurement:  "Domain 6: Measurement of Outcomes",
	ReportedResults:     "Domain 7: Reported Results",
}

func label(id string) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return "Domain " + id
}

func labelList(ids []string) string {
	ls := make([]string, len(ids))
	for i, id := range ids {
		ls[i] = label(id)
	}
	return strings.Join(ls, ", ")
}
