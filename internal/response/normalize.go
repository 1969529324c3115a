package response

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// synonyms maps folded spellings to canonical tokens.
var synonyms = map[string]Response{
	"Y":                 Yes,
	"YES":               Yes,
	"PY":                ProbablyYes,
	"PROBABLY YES":      ProbablyYes,
	"PN":                ProbablyNo,
	"PROBABLY NO":       ProbablyNo,
	"N":                 No,
	"NO":                No,
	"NI":                NoInformation,
	"NO INFORMATION":    NoInformation,
	"NO INFO":           NoInformation,
	"NA":                NotApplicable,
	"N/A":               NotApplicable,
	"NOT APPLICABLE":    NotApplicable,
	"SN":                StrongNo,
	"STRONG NO":         StrongNo,
	"WN":                WeakNo,
	"WEAK NO":           WeakNo,
	"SY":                StrongYes,
	"STRONG YES":        StrongYes,
	"WY":                WeakYes,
	"WEAK YES":          WeakYes,
	"VPY":               VeryProbablyYes,
	"VERY PROBABLY YES": VeryProbablyYes,
}

// fold uppercases, trims and collapses separators so that "probably_yes",
// " Probably-Yes " and "PROBABLY  YES" compare equal.
func fold(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Parse maps a raw string to a canonical token without checking any alphabet.
func Parse(raw string) (Response, bool) {
	r, ok := synonyms[fold(raw)]
	return r, ok
}

// Normalize maps raw to a canonical token accepted by q.
func Normalize(q Question, raw string) (Response, error) {
	r, ok := Parse(raw)
	if !ok || !q.Accepts(r) {
		return "", &InvalidResponseError{Question: q.ID, Raw: raw, Allowed: q.Alphabet}
	}
	return r, nil
}

// NormalizeAll validates a whole domain's raw answers. Every question in qs
// is required; blank answers count as missing. Invalid answers are reported
// together, in question order, before missing ones.
func NormalizeAll(scope string, qs []Question, raw map[string]string) (Answers, error) {
	known := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		known[q.ID] = struct{}{}
	}

	var unknown []string
	for id := range raw {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: %w: %s", scope, ErrUnknownQuestion, strings.Join(unknown, ", "))
	}

	out := make(Answers, len(qs))
	var errs []error
	var missing []string
	for _, q := range qs {
		v, ok := raw[q.ID]
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, q.ID)
			continue
		}
		r, err := Normalize(q, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[q.ID] = r
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", scope, errors.Join(errs...))
	}
	if len(missing) > 0 {
		return nil, &IncompleteInputError{Scope: scope, Missing: missing}
	}
	return out, nil
}

// Validate checks already-canonical answers against qs.
func Validate(scope string, qs []Question, a Answers) error {
	raw := make(map[string]string, len(a))
	for k, v := range a {
		raw[k] = string(v)
	}
	_, err := NormalizeAll(scope, qs, raw)
	return err
}
