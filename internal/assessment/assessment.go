// Package assessment runs an instrument over a study's answers: one domain,
// a full instrument, or a recombination of existing domain levels. It also
// evaluates answer files in batches and compares a human assessment with an
// automated one.
//
// Evaluators never log and never share state. Logging and concurrency live
// here.
package assessment

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"robkit/internal/answerset"
	"robkit/internal/logging"
	"robkit/internal/response"
	"robkit/internal/robinse"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

// ErrThreatsNotSupported is returned when conclusion-threat judgments are
// given to an instrument that has none.
var ErrThreatsNotSupported = errors.New("instrument does not judge conclusion threats")

// Input is the raw material of one assessment.
type Input struct {
	// Answers maps domain ID to question ID to raw answer.
	Answers  map[string]map[string]string
	Threats  map[string]string
	Override *verdict.Override
}

// Assessment is the full result for one study.
type Assessment struct {
	ID         string                  `json:"id" yaml:"id"`
	Study      string                  `json:"study,omitempty" yaml:"study,omitempty"`
	Instrument string                  `json:"instrument" yaml:"instrument"`
	Title      string                  `json:"title" yaml:"title"`
	Variant    string                  `json:"variant,omitempty" yaml:"variant,omitempty"`
	Domains    []verdict.DomainVerdict `json:"domains" yaml:"domains"`
	Overall    verdict.OverallVerdict  `json:"overall" yaml:"overall"`
	Threat     *robinse.ThreatVerdict  `json:"threat,omitempty" yaml:"threat,omitempty"`
	// Interpretation reads the final overall level.
	Interpretation verdict.Interpretation `json:"interpretation" yaml:"interpretation"`

	// Answers holds the canonical answers the verdicts were computed from.
	Answers map[string]response.Answers `json:"-" yaml:"-"`
}

// Domain returns the verdict for id.
func (a *Assessment) Domain(id string) (verdict.DomainVerdict, bool) {
	for _, d := range a.Domains {
		if d.Domain == id {
			return d, true
		}
	}
	return verdict.DomainVerdict{}, false
}

// EvaluateDomain evaluates a single domain of inst.
func EvaluateDomain(inst Instrument, id string, raw map[string]string) (verdict.DomainVerdict, error) {
	d, ok := inst.Domain(id)
	if !ok {
		return verdict.DomainVerdict{}, fmt.Errorf("%s: %w: %s", inst.Name(), verdict.ErrUnknownDomain, id)
	}
	v, err := rules.Evaluate(d, raw)
	if err != nil {
		return verdict.DomainVerdict{}, err
	}
	v.Caveat = inst.Caveat(v.Risk)
	return v, nil
}

// Evaluate runs every domain of inst and combines the results. All domains
// are required. Answer errors from every domain are reported together.
func Evaluate(inst Instrument, in Input) (*Assessment, error) {
	log := logging.Get(logging.CategoryAssessment).With("instrument", inst.Name())
	timer := logging.StartTimer(logging.CategoryAssessment, "evaluate "+inst.Name())
	defer timer.Stop()

	if err := checkDomains(inst, in.Answers); err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:         uuid.NewString(),
		Instrument: inst.Name(),
		Title:      inst.Title(),
		Variant:    VariantOf(inst),
		Answers:    make(map[string]response.Answers, len(in.Answers)),
	}

	var errs []error
	for _, d := range inst.Domains() {
		norm, err := response.NormalizeAll(d.ID(), d.Questions(), in.Answers[d.ID()])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		v := rules.Verdict(d, norm)
		v.Caveat = inst.Caveat(v.Risk)
		if v.Fallback {
			log.Warn("%s: unclassified combination, fallback %s", d.ID(), v.Risk)
		}
		a.Domains = append(a.Domains, v)
		a.Answers[d.ID()] = norm
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	overall, err := Recombine(inst, verdict.LevelsOf(a.Domains), in.Override)
	if err != nil {
		return nil, err
	}
	a.Overall = overall

	threat, err := assessThreat(inst, in.Threats)
	if err != nil {
		return nil, err
	}
	a.Threat = threat
	a.Interpretation = interpret(inst, a.Overall, threat, len(in.Threats) > 0)

	log.Debug("assessment %s: overall %s", a.ID, a.Overall.Risk)
	return a, nil
}

// checkDomains rejects unknown domains before any evaluation and lists every
// missing one.
func checkDomains(inst Instrument, answers map[string]map[string]string) error {
	var unknown []string
	for id := range answers {
		if _, ok := inst.Domain(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: %w: %s", inst.Name(), verdict.ErrUnknownDomain, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, d := range inst.Domains() {
		if _, ok := answers[d.ID()]; !ok {
			missing = append(missing, d.ID())
		}
	}
	if len(missing) > 0 {
		return &response.IncompleteInputError{Scope: inst.Name(), Missing: missing}
	}
	return nil
}

func assessThreat(inst Instrument, raw map[string]string) (*robinse.ThreatVerdict, error) {
	ta, ok := inst.(ThreatAssessor)
	if !ok {
		if len(raw) > 0 {
			return nil, fmt.Errorf("%s: %w", inst.Name(), ErrThreatsNotSupported)
		}
		return nil, nil
	}
	tv, err := ta.AssessThreat(raw)
	if err != nil {
		return nil, err
	}
	return &tv, nil
}

// interpret reads o with inst. Judged threats add a sentence on the
// conclusions; the default "no data" threat does not.
func interpret(inst Instrument, o verdict.OverallVerdict, threat *robinse.ThreatVerdict, judged bool) verdict.Interpretation {
	in := inst.Interpret(o)
	if threat != nil && judged {
		in.Summary += " " + threat.Interpret()
	}
	return in
}

// Recombine derives the overall verdict from domain levels alone and applies
// ov. The caveat follows the final level.
func Recombine(inst Instrument, ls []verdict.DomainLevel, ov *verdict.Override) (verdict.OverallVerdict, error) {
	o, err := inst.Combine(ls)
	if err != nil {
		return verdict.OverallVerdict{}, err
	}
	if ov != nil && !slices.Contains(inst.Levels(), ov.Risk) {
		return verdict.OverallVerdict{}, fmt.Errorf("%s: override: %w: %s is not on the %s scale", inst.Name(), verdict.ErrUnknownRiskLevel, ov.Risk, inst.Title())
	}
	o, err = verdict.ApplyOverride(o, ov)
	if err != nil {
		return verdict.OverallVerdict{}, fmt.Errorf("%s: %w", inst.Name(), err)
	}
	o.Caveat = inst.Caveat(o.Risk)
	if o.Overridden() {
		logging.Get(logging.CategoryAssessment).Info("%s: overall overridden from %s to %s", inst.Name(), o.Computed, o.Risk)
	}
	return o, nil
}

// RecombineLabels is Recombine over textual levels such as "low" or
// "some concerns", keyed by domain ID.
func RecombineLabels(inst Instrument, labels map[string]string, ov *verdict.Override) (verdict.OverallVerdict, error) {
	ids := make([]string, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ls := make([]verdict.DomainLevel, 0, len(ids))
	for _, id := range ids {
		r, err := verdict.ParseRiskLevel(labels[id])
		if err != nil {
			return verdict.OverallVerdict{}, fmt.Errorf("%s: %s: %w", inst.Name(), id, err)
		}
		ls = append(ls, verdict.DomainLevel{Domain: id, Risk: r})
	}
	return Recombine(inst, ls, ov)
}

// FromSet resolves the instrument an answer file names and its input.
func FromSet(s *answerset.Set) (Instrument, Input, error) {
	inst, err := Lookup(s.Instrument, s.Variant)
	if err != nil {
		return nil, Input{}, err
	}
	return inst, Input{Answers: s.Domains, Threats: s.Threats, Override: s.Override}, nil
}

// EvaluateSet evaluates an answer file. A file with levels and no answers is
// recombined; its assessment has no domain verdicts.
func EvaluateSet(s *answerset.Set) (*Assessment, error) {
	inst, in, err := FromSet(s)
	if err != nil {
		return nil, err
	}

	if len(s.Domains) == 0 {
		o, err := RecombineLabels(inst, s.Levels, s.Override)
		if err != nil {
			return nil, err
		}
		threat, err := assessThreat(inst, s.Threats)
		if err != nil {
			return nil, err
		}
		return &Assessment{
			ID:             uuid.NewString(),
			Study:          s.Study,
			Instrument:     inst.Name(),
			Title:          inst.Title(),
			Variant:        VariantOf(inst),
			Overall:        o,
			Threat:         threat,
			Interpretation: interpret(inst, o, threat, len(s.Threats) > 0),
		}, nil
	}

	a, err := Evaluate(inst, in)
	if err != nil {
		return nil, err
	}
	a.Study = s.Study
	return a, nil
}
