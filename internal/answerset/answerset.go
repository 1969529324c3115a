// Package answerset reads and writes answer files: the raw answers for one
// study, grouped by domain, plus the settings an assessment needs.
//
// A file is YAML unless its name ends in ".json":
//
//	instrument: robins-e
//	variant: A
//	study: Cohort 2019
//	domains:
//	  domain_1:
//	    "1.1": Y
//	    "1.2": probably yes
//	threats:
//	  domain_1: "No"
//	override:
//	  risk: high
//	  justification: confounding by indication
package answerset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"robkit/internal/verdict"
)

// ErrEmptySet is returned for a file with neither answers nor levels.
var ErrEmptySet = errors.New("answer file has no domains")

// Set is the content of one answer file.
type Set struct {
	Instrument string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Variant    string `yaml:"variant,omitempty" json:"variant,omitempty"`
	Study      string `yaml:"study,omitempty" json:"study,omitempty"`

	// Domains maps domain ID to question ID to raw answer.
	Domains map[string]map[string]string `yaml:"domains,omitempty" json:"domains,omitempty"`
	// Levels maps domain ID to a risk label, for recombination without answers.
	Levels map[string]string `yaml:"levels,omitempty" json:"levels,omitempty"`
	// Threats maps domain ID to a conclusion-threat label.
	Threats  map[string]string `yaml:"threats,omitempty" json:"threats,omitempty"`
	Override *verdict.Override `yaml:"override,omitempty" json:"override,omitempty"`

	// Justifications mirrors Domains with the reason given for each answer.
	Justifications map[string]map[string]string `yaml:"justifications,omitempty" json:"justifications,omitempty"`

	// Path is the file the set was loaded from.
	Path string `yaml:"-" json:"-"`
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load reads an answer file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer file: %w", err)
	}
	s, err := Parse(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes an answer file body, as JSON if asJSON is set and as YAML
// otherwise.
func Parse(data []byte, asJSON bool) (*Set, error) {
	var s Set
	if asJSON {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse answers: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	if len(s.Domains) == 0 && len(s.Levels) == 0 {
		return nil, ErrEmptySet
	}
	return &s, nil
}

// Save writes the set, as JSON if path ends in ".json".
func (s *Set) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	return nil
}

// WithDefaults fills an empty instrument or variant. The receiver is not
// modified.
func (s *Set) WithDefaults(instrument, variant string) *Set {
	out := *s
	if strings.TrimSpace(out.Instrument) == "" {
		out.Instrument = instrument
	}
	if strings.TrimSpace(out.Variant) == "" {
		out.Variant = variant
	}
	return &out
}

// Name identifies the set in batch output: the study label, else the file.
func (s *Set) Name() string {
	if s.Study != "" {
		return s.Study
	}
	return s.Path
}
