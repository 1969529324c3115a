// Package rob2 implements the five-domain risk-of-bias instrument for
// parallel-group randomized trials.
package rob2

import (
	"fmt"
	"slices"

	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// Name identifies the instrument in answer files and on the command line.
const Name = "rob2"

// Domain IDs.
const (
	Randomization      = "domain_1"
	Deviations         = "domain_2"
	MissingData        = "domain_3"
	OutcomeMeasurement = "domain_4"
	SelectiveReporting = "domain_5"
)

// Instrument is the trial instrument. The zero value is not usable; call New.
type Instrument struct {
	domains []rules.Domain
	byID    map[string]rules.Domain
}

// New returns the trial instrument with its five domains in published order.
func New() *Instrument {
	ds := []rules.Domain{
		randomizationDomain(),
		deviationsDomain(),
		missingDataDomain(),
		outcomeMeasurementDomain(),
		selectiveReportingDomain(),
	}
	byID := make(map[string]rules.Domain, len(ds))
	for _, d := range ds {
		byID[d.ID()] = d
	}
	return &Instrument{domains: ds, byID: byID}
}

func (i *Instrument) Name() string  { return Name }
func (i *Instrument) Title() string { return "RoB 2 (parallel-group randomized trials)" }

// Domains returns the domains in published order.
func (i *Instrument) Domains() []rules.Domain { return i.domains }

// Domain looks up a domain by ID.
func (i *Instrument) Domain(id string) (rules.Domain, bool) {
	d, ok := i.byID[id]
	return d, ok
}

// Caveat is empty: trial verdicts carry no fixed caveat.
func (i *Instrument) Caveat(verdict.RiskLevel) string { return "" }

// Levels is Low, Some concerns and High.
func (i *Instrument) Levels() []verdict.RiskLevel { return slices.Clone(scale) }

// Interpret reads an overall verdict. See Interpret.
func (i *Instrument) Interpret(o verdict.OverallVerdict) verdict.Interpretation { return Interpret(o) }

// Combine derives the overall verdict. See Combine.
func (i *Instrument) Combine(ls []verdict.DomainLevel) (verdict.OverallVerdict, error) {
	return Combine(ls)
}

// label is the domain name used in rationales, e.g. "Domain 1 (Randomization)".
func label(id string) string {
	switch id {
	case Randomization:
		return "Domain 1 (Randomization)"
	case Deviations:
		return "Domain 2 (Deviations)"
	case MissingData:
		return "Domain 3 (Missing data)"
	case OutcomeMeasurement:
		return "Domain 4 (Outcome measurement)"
	case SelectiveReporting:
		return "Domain 5 (Selective reporting)"
	default:
		return fmt.Sprintf("Domain %s", id)
	}
}
