package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"robkit/internal/assessment"
)

// writeOutput renders v in the selected output format.
func writeOutput(w io.Writer, v any) error {
	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// parsePairs reads "key=value" arguments.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%s given more than once", k)
		}
		out[k] = v
	}
	return out, nil
}

// lookupInstrument resolves an instrument, falling back to the configured
// defaults for empty values.
func lookupInstrument(name, variant string) (assessment.Instrument, error) {
	if name == "" {
		name = cfg.Engine.Instrument
	}
	if variant == "" {
		variant = cfg.Engine.Variant
	}
	return assessment.Lookup(name, variant)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
