package assessment

import (
	"errors"
	"fmt"
	"strings"

	"robkit/internal/rob2"
	"robkit/internal/robinse"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// ErrUnknownInstrument is returned for an instrument name Lookup cannot resolve.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Instrument is a set of domains with the combinator that merges their levels.
type Instrument interface {
	Name() string
	Title() string
	Domains() []rules.Domain
	Domain(id string) (rules.Domain, bool)
	// Caveat qualifies a risk level, or returns "".
	Caveat(r verdict.RiskLevel) string
	// Levels lists the risk levels a verdict of this instrument may take.
	Levels() []verdict.RiskLevel
	Combine(ls []verdict.DomainLevel) (verdict.OverallVerdict, error)
	Interpret(o verdict.OverallVerdict) verdict.Interpretation
}

// ThreatAssessor is implemented by instruments that judge whether bias
// threatens a study's conclusions.
type ThreatAssessor interface {
	AssessThreat(raw map[string]string) (robinse.ThreatVerdict, error)
}

type variantInstrument interface {
	Variant() robinse.Variant
}

var aliases = map[string]string{
	"rob2":     rob2.Name,
	"rob-2":    rob2.Name,
	"robins-e": robinse.Name,
	"robinse":  robinse.Name,
}

// Names lists the canonical instrument names.
func Names() []string {
	return []string{rob2.Name, robinse.Name}
}

// Lookup resolves an instrument by name. variant only matters for the
// exposure instrument; empty selects its default.
func Lookup(name, variant string) (Instrument, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)

	switch aliases[key] {
	case rob2.Name:
		return rob2.New(), nil
	case robinse.Name:
		v, err := robinse.ParseVariant(variant)
		if err != nil {
			return nil, err
		}
		inst, err := robinse.New(v)
		if err != nil {
			return nil, err
		}
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownInstrument, name, strings.Join(Names(), ", "))
}

// VariantOf returns the confounding variant of inst, or "" if it has none.
func VariantOf(inst Instrument) string {
	if v, ok := inst.(variantInstrument); ok {
		return string(v.Variant())
	}
	return ""
}
