// Package verdict holds the result types shared by both instruments:
// risk levels, domain verdicts with their pathways, and overall verdicts
// with assessor overrides.
package verdict

import (
	"errors"
	"fmt"
	"strings"

	"robkit/internal/response"
)

var (
	// ErrUnknownRiskLevel is returned when a label cannot be read as a risk level.
	ErrUnknownRiskLevel = errors.New("unknown risk level")

	// ErrOverrideWithoutJustification is returned when an override changes
	// the computed verdict without saying why.
	ErrOverrideWithoutJustification = errors.New("override without justification")

	// ErrUnknownDomain is returned when a domain ID is not part of the instrument.
	ErrUnknownDomain = errors.New("unknown domain")
)

// RiskLevel is a risk-of-bias classification. The zero value is invalid.
type RiskLevel int

const (
	Low RiskLevel = iota + 1
	SomeConcerns
	High
	VeryHigh
)

// Levels lists the valid risk levels in documentary order.
var Levels = []RiskLevel{Low, SomeConcerns, High, VeryHigh}

func (r RiskLevel) String() string {
	switch r {
	case Low:
		return "Low"
	case SomeConcerns:
		return "Some concerns"
	case High:
		return "High"
	case VeryHigh:
		return "Very high"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}

// Valid reports whether r is one of the declared levels.
func (r RiskLevel) Valid() bool {
	return r >= Low && r <= VeryHigh
}

// Key is the stable machine-readable form used in files.
func (r RiskLevel) Key() string {
	switch r {
	case Low:
		return "low"
	case SomeConcerns:
		return "some_concerns"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	default:
		return ""
	}
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRiskLevel, int(r))
	}
	return []byte(r.Key()), nil
}

func (r *RiskLevel) UnmarshalText(text []byte) error {
	lvl, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// ParseRiskLevel reads enumerated keys and the published text labels of both
// instruments, e.g. "some_concerns", "High risk of bias",
// "Low risk of bias (except for concerns about uncontrolled confounding)".
func ParseRiskLevel(label string) (RiskLevel, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	switch {
	case s == "":
		return 0, fmt.Errorf("%w: empty label", ErrUnknownRiskLevel)
	case strings.HasPrefix(s, "very high"):
		return VeryHigh, nil
	case strings.HasPrefix(s, "low"):
		return Low, nil
	case strings.HasPrefix(s, "some concern"):
		return SomeConcerns, nil
	case strings.HasPrefix(s, "high"):
		return High, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, label)
}

// Step is one question visited on the way to a verdict.
type Step struct {
	Question string            `json:"question" yaml:"question"`
	Answer   response.Response `json:"answer" yaml:"answer"`
}

func (s Step) String() string {
	return s.Question + "→" + string(s.Answer)
}

// DomainVerdict is the classification of one domain.
type DomainVerdict struct {
	Domain    string    `json:"domain" yaml:"domain"`
	Name      string    `json:"name" yaml:"name"`
	Risk      RiskLevel `json:"risk" yaml:"risk"`
	Rationale string    `json:"rationale" yaml:"rationale"`
	Pathway   []Step    `json:"pathway" yaml:"pathway"`
	// Rules lists the IDs of the rules that decided, in evaluation order.
	Rules []string `json:"rules" yaml:"rules"`
	// Fallback is set when no explicit rule matched some part of the domain.
	Fallback bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Caveat   string `json:"caveat,omitempty" yaml:"caveat,omitempty"`
}

// PathwayString renders the pathway as "1.1→Y, 1.2→PY".
func (v DomainVerdict) PathwayString() string {
	parts := make([]string, len(v.Pathway))
	for i, s := range v.Pathway {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// DomainLevel is the input to an overall combinator.
type DomainLevel struct {
	Domain string    `json:"domain" yaml:"domain"`
	Risk   RiskLevel `json:"risk" yaml:"risk"`
}

// LevelsOf extracts combinator input from domain verdicts.
func LevelsOf(vs []DomainVerdict) []DomainLevel {
	out := make([]DomainLevel, len(vs))
	for i, v := range vs {
		out[i] = DomainLevel{Domain: v.Domain, Risk: v.Risk}
	}
	return out
}

// Counts tallies domains per risk level.
type Counts struct {
	Low          int `json:"low" yaml:"low"`
	SomeConcerns int `json:"some_concerns" yaml:"some_concerns"`
	High         int `json:"high" yaml:"high"`
	VeryHigh     int `json:"very_high" yaml:"very_high"`
}

// Count tallies ls.
func Count(ls []DomainLevel) Counts {
	var c Counts
	for _, l := range ls {
		switch l.Risk {
		case Low:
			c.Low++
		case SomeConcerns:
			c.SomeConcerns++
		case High:
			c.High++
		case VeryHigh:
			c.VeryHigh++
		}
	}
	return c
}

// DomainsAt returns the IDs of the domains at level r, in input order.
func DomainsAt(ls []DomainLevel, r RiskLevel) []string {
	var ids []string
	for _, l := range ls {
		if l.Risk == r {
			ids = append(ids, l.Domain)
		}
	}
	return ids
}
