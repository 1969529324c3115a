// Package proposer asks a text-generation model to answer an instrument's
// signalling questions from study text. Its output is raw input: it goes
// through the same normalization and evaluation as human answers.
package proposer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"robkit/internal/answerset"
	"robkit/internal/logging"
	"robkit/internal/rules"
)

// ErrNoProposal is returned when no attempt produced a usable reply.
var ErrNoProposal = errors.New("no usable proposal")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Instrument is the part of an instrument the proposer needs.
type Instrument interface {
	Name() string
	Title() string
	Domains() []rules.Domain
}

// Answer is one proposed answer.
type Answer struct {
	Answer        string `json:"answer" yaml:"answer"`
	Justification string `json:"justification,omitempty" yaml:"justification,omitempty"`
}

// UnmarshalJSON also accepts a bare string answer.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer{Answer: s}
		return nil
	}
	type plain Answer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Answer(p)
	return nil
}

// Proposal maps domain ID to question ID to a proposed answer.
type Proposal map[string]map[string]Answer

// ToSet converts the proposal into an answer file.
func (p Proposal) ToSet(instrument, variant string) *answerset.Set {
	s := &answerset.Set{
		Instrument:     instrument,
		Variant:        variant,
		Domains:        make(map[string]map[string]string, len(p)),
		Justifications: make(map[string]map[string]string, len(p)),
	}
	for d, qs := range p {
		s.Domains[d] = make(map[string]string, len(qs))
		for q, a := range qs {
			s.Domains[d][q] = a.Answer
			if a.Justification != "" {
				if s.Justifications[d] == nil {
					s.Justifications[d] = make(map[string]string)
				}
				s.Justifications[d][q] = a.Justification
			}
		}
	}
	return s
}

// Parse reads a model reply. Markdown fences and text around the JSON
// object are tolerated.
func Parse(reply string) (Proposal, error) {
	body := cleanJSONResponse(reply)
	if !strings.HasPrefix(body, "{") {
		body = extractJSONObject(body)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: reply contains no JSON object", ErrNoProposal)
	}

	var p Proposal
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProposal, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty reply", ErrNoProposal)
	}
	return p, nil
}

// cleanJSONResponse removes markdown code fences from a JSON reply.
func cleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}

// extractJSONObject returns the first balanced {...} in s, ignoring braces
// inside strings.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// Proposer asks a Generator for answers, retrying unusable replies.
type Proposer struct {
	gen         Generator
	maxAttempts int
	timeout     time.Duration
}

// New returns a Proposer. maxAttempts below one means one attempt; a zero
// timeout leaves each attempt bounded only by the caller's context.
func New(gen Generator, maxAttempts int, timeout time.Duration) *Proposer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Proposer{gen: gen, maxAttempts: maxAttempts, timeout: timeout}
}

// Propose answers inst's questions from study. Domains the instrument does
// not have are dropped from the reply.
func (p *Proposer) Propose(ctx context.Context, inst Instrument, study string) (Proposal, error) {
	if strings.TrimSpace(study) == "" {
		return nil, fmt.Errorf("proposer: study text is empty")
	}
	log := logging.Get(logging.CategoryProposer).With("instrument", inst.Name())
	prompt := BuildPrompt(inst, study)

	var errs []error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prop, err := p.attempt(ctx, prompt)
		if err == nil {
			dropUnknown(prop, inst, log)
			log.Info("proposal received on attempt %d for %d domains", attempt, len(prop))
			return prop, nil
		}
		log.Warn("attempt %d failed: %v", attempt, err)
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("proposer: %w", errors.Join(errs...))
}

func (p *Proposer) attempt(ctx context.Context, prompt string) (Proposal, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	reply, err := p.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return Parse(reply)
}

func dropUnknown(prop Proposal, inst Instrument, log *logging.Logger) {
	known := make(map[string]bool)
	for _, d := range inst.Domains() {
		known[d.ID()] = true
	}
	var dropped []string
	for id := range prop {
		if !known[id] {
			dropped = append(dropped, id)
			delete(prop, id)
		}
	}
	if len(dropped) > 0 {
		sort.Strings(dropped)
		log.Warn("dropped domains not in the instrument: %s", strings.Join(dropped, ", "))
	}
}
