package robinse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"robkit/internal/verdict"
)

// ErrUnknownThreat is returned when a label cannot be read as a threat judgment.
var ErrUnknownThreat = errors.New("unknown conclusion threat")

// Threat is a judgment of whether bias threatens the study's conclusions.
type Threat string

const (
	ThreatYes        Threat = "Yes"
	ThreatNo         Threat = "No"
	ThreatCannotTell Threat = "Cannot tell"
)

// ParseThreat reads "Y", "yes", "no", "cannot tell", "CT", "NI" and similar.
func ParseThreat(label string) (Threat, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.NewReplacer("_", " ", "-", " ", "'", "").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	switch s {
	case "y", "yes", "py", "probably yes":
		return ThreatYes, nil
	case "n", "no", "pn", "probably no":
		return ThreatNo, nil
	case "ct", "cannot tell", "cant tell", "unclear", "ni", "no information":
		return ThreatCannotTell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownThreat, label)
}

// ThreatVerdict is the instrument-level conclusion-threat judgment.
type ThreatVerdict struct {
	Threat    Threat `json:"threat" yaml:"threat"`
	Rationale string `json:"rationale" yaml:"rationale"`
	// Domains lists the domains that decided the result, sorted.
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`
}

// AssessThreat reduces per-domain threat judgments: any Yes gives Yes,
// otherwise any Cannot tell gives Cannot tell, otherwise No. No input at all
// gives Cannot tell.
func AssessThreat(ts map[string]Threat) (ThreatVerdict, error) {
	if len(ts) == 0 {
		return ThreatVerdict{
			Threat:    ThreatCannotTell,
			Rationale: "No data: no conclusion-threat judgments were provided",
		}, nil
	}

	byThreat := make(map[Threat][]string)
	for id, t := range ts {
		if _, ok := labels[id]; !ok {
			return ThreatVerdict{}, fmt.Errorf("%s: %w: %s", Name, verdict.ErrUnknownDomain, id)
		}
		switch t {
		case ThreatYes, ThreatNo, ThreatCannotTell:
		default:
			return ThreatVerdict{}, fmt.Errorf("%s: %s: %w: %q", Name, id, ErrUnknownThreat, string(t))
		}
		byThreat[t] = append(byThreat[t], id)
	}
	for _, ids := range byThreat {
		sort.Strings(ids)
	}

	if ids := byThreat[ThreatYes]; len(ids) > 0 {
		return ThreatVerdict{
			Threat:    ThreatYes,
			Rationale: "Bias threatens the conclusions in: " + labelList(ids),
			Domains:   ids,
		}, nil
	}
	if ids := byThreat[ThreatCannotTell]; len(ids) > 0 {
		return ThreatVerdict{
			Threat:    ThreatCannotTell,
			Rationale: "Cannot tell whether bias threatens the conclusions in: " + labelList(ids),
			Domains:   ids,
		}, nil
	}
	return ThreatVerdict{
		Threat:    ThreatNo,
		Rationale: fmt.Sprintf("Bias does not threaten the conclusions in any of the %d assessed domains", len(ts)),
	}, nil
}

// ParseThreats normalizes raw threat labels keyed by domain ID.
func ParseThreats(raw map[string]string) (map[string]Threat, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]Threat, len(raw))
	var errs []error
	for _, id := range ids {
		t, err := ParseThreat(raw[id])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		out[id] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
