package rob2

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robkit/internal/response"
	"robkit/internal/rules"
	"robkit/internal/verdict"
)

func answers(qs string, vals ...string) map[string]string {
	ids := strings.Fields(qs)
	m := make(map[string]string, len(ids))
	for i, id := range ids {
		m[id] = vals[i]
	}
	return m
}

func evaluate(t *testing.T, id string, raw map[string]string) verdict.DomainVerdict {
	t.Helper()
	d, ok := New().Domain(id)
	require.True(t, ok, "domain %s", id)
	v, err := rules.Evaluate(d, raw)
	require.NoError(t, err)
	return v
}

func TestDomains(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		raw      map[string]string
		risk     verdict.RiskLevel
		rules    []string
		fallback bool
	}{
		{
			name:   "randomization low",
			domain: Randomization,
			raw:    answers("1.1 1.2 1.3", "Y", "Y", "N"),
			risk:   verdict.Low,
			rules:  []string{"domain_1.low"},
		},
		{
			name:   "randomization not concealed",
			domain: Randomization,
			raw:    answers("1.1 1.2 1.3", "N", "N", "N"),
			risk:   verdict.High,
			rules:  []string{"domain_1.high.not_concealed"},
		},
		{
			name:   "randomization no information on concealment",
			domain: Randomization,
			raw:    answers("1.1 1.2 1.3", "Y", "NI", "N"),
			risk:   verdict.SomeConcerns,
			rules:  []string{"domain_1.some_concerns"},
		},
		{
			name:   "randomization unclear concealment with imbalance",
			domain: Randomization,
			raw:    answers("1.1 1.2 1.3", "Y", "NI", "PY"),
			risk:   verdict.High,
			rules:  []string{"domain_1.high.unclear_concealment_imbalance"},
		},
		{
			name:   "deviations unaware and appropriate analysis",
			domain: Deviations,
			raw:    answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "N", "N", "NA", "NA", "NA", "Y", "NA"),
			risk:   verdict.Low,
			rules:  []string{"domain_2.part1.low.unaware", "domain_2.part2.low"},
		},
		{
			name:   "deviations high in both parts",
			domain: Deviations,
			raw:    answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "Y", "Y", "Y", "Y", "N", "N", "Y"),
			risk:   verdict.High,
			rules:  []string{"domain_2.part1.high", "domain_2.part2.high"},
		},
		{
			name:   "deviations inappropriate analysis without impact",
			domain: Deviations,
			raw:    answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "N", "N", "NA", "NA", "NA", "N", "N"),
			risk:   verdict.SomeConcerns,
			rules:  []string{"domain_2.part1.low.unaware", "domain_2.part2.some_concerns"},
		},
		{
			name:     "deviations aware but 2.3 not applicable",
			domain:   Deviations,
			raw:      answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "Y", "N", "NA", "NA", "NA", "Y", "NA"),
			risk:     verdict.SomeConcerns,
			rules:    []string{"domain_2.part1.fallback", "domain_2.part2.low"},
			fallback: true,
		},
		{
			name:   "missing data complete",
			domain: MissingData,
			raw:    answers("3.1 3.2 3.3 3.4", "Y", "NA", "NA", "NA"),
			risk:   verdict.Low,
			rules:  []string{"domain_3.low.complete"},
		},
		{
			name:   "missing data likely dependent",
			domain: MissingData,
			raw:    answers("3.1 3.2 3.3 3.4", "N", "N", "Y", "Y"),
			risk:   verdict.High,
			rules:  []string{"domain_3.high"},
		},
		{
			name:   "missing data no information",
			domain: MissingData,
			raw:    answers("3.1 3.2 3.3 3.4", "N", "NI", "Y", "NA"),
			risk:   verdict.SomeConcerns,
			rules:  []string{"domain_3.some_concerns.no_information"},
		},
		{
			name:   "measurement blinded",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "N", "N", "N", "NA", "NA"),
			risk:   verdict.Low,
			rules:  []string{"domain_4.low.blinded"},
		},
		{
			name:   "measurement inappropriate",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "Y", "N", "NA", "NA", "NA"),
			risk:   verdict.High,
			rules:  []string{"domain_4.high.inappropriate_method"},
		},
		{
			name:   "measurement probably inappropriate, later questions skipped",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "PY", "NI", "NA", "NA", "NA"),
			risk:   verdict.High,
			rules:  []string{"domain_4.high.inappropriate_method"},
		},
		{
			name:   "measurement differed, later questions skipped",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "N", "Y", "NA", "NA", "NA"),
			risk:   verdict.High,
			rules:  []string{"domain_4.high.differed"},
		},
		{
			name:   "measurement probably differed, later questions skipped",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "PN", "PY", "NA", "NA", "NA"),
			risk:   verdict.High,
			rules:  []string{"domain_4.high.differed"},
		},
		{
			name:   "measurement no information blinded",
			domain: OutcomeMeasurement,
			raw:    answers("4.1 4.2 4.3 4.4 4.5", "N", "NI", "N", "NA", "NA"),
			risk:   verdict.SomeConcerns,
			rules:  []string{"domain_4.some_concerns.no_information_blinded"},
		},
		{
			name:   "reporting pre-specified",
			domain: SelectiveReporting,
			raw:    answers("5.1 5.2 5.3", "Y", "N", "N"),
			risk:   verdict.Low,
			rules:  []string{"domain_5.low"},
		},
		{
			name:   "reporting no plan",
			domain: SelectiveReporting,
			raw:    answers("5.1 5.2 5.3", "N", "N", "N"),
			risk:   verdict.SomeConcerns,
			rules:  []string{"domain_5.some_concerns.no_plan"},
		},
		{
			name:   "reporting selected outcome",
			domain: SelectiveReporting,
			raw:    answers("5.1 5.2 5.3", "Y", "Y", "N"),
			risk:   verdict.High,
			rules:  []string{"domain_5.high.outcome_selection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evaluate(t, tt.domain, tt.raw)
			assert.Equal(t, tt.risk, v.Risk)
			assert.Equal(t, tt.rules, v.Rules)
			assert.Equal(t, tt.fallback, v.Fallback)
			assert.NotEmpty(t, v.Rationale)
		})
	}
}

func TestRandomizationPathway(t *testing.T) {
	v := evaluate(t, Randomization, answers("1.1 1.2 1.3", "yes", "probably yes", "no"))

	want := []verdict.Step{
		{Question: "1.1", Answer: response.Yes},
		{Question: "1.2", Answer: response.ProbablyYes},
		{Question: "1.3", Answer: response.No},
	}
	if diff := cmp.Diff(want, v.Pathway); diff != "" {
		t.Errorf("pathway mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Bias arising from the randomization process", v.Name)
}

func TestDomainRejectsBadInput(t *testing.T) {
	d, _ := New().Domain(Randomization)

	_, err := rules.Evaluate(d, answers("1.1 1.2 1.3", "Y", "NA", "N"))
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrInvalidResponse)

	_, err = rules.Evaluate(d, answers("1.1 1.2", "Y", "Y"))
	var incomplete *response.IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"1.3"}, incomplete.Missing)
}

func TestEndToEndLowRisk(t *testing.T) {
	inputs := map[string]map[string]string{
		Randomization:      answers("1.1 1.2 1.3", "Y", "Y", "N"),
		Deviations:         answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "N", "N", "NA", "NA", "NA", "Y", "NA"),
		MissingData:        answers("3.1 3.2 3.3 3.4", "Y", "NA", "NA", "NA"),
		OutcomeMeasurement: answers("4.1 4.2 4.3 4.4 4.5", "N", "N", "N", "NA", "NA"),
		SelectiveReporting: answers("5.1 5.2 5.3", "Y", "N", "N"),
	}

	inst := New()
	var vs []verdict.DomainVerdict
	for _, d := range inst.Domains() {
		v, err := rules.Evaluate(d, inputs[d.ID()])
		require.NoError(t, err)
		assert.Equal(t, verdict.Low, v.Risk, d.ID())
		vs = append(vs, v)
	}

	o, err := inst.Combine(verdict.LevelsOf(vs))
	require.NoError(t, err)
	assert.Equal(t, verdict.Low, o.Risk)
	assert.Equal(t, verdict.Low, o.Computed)
	assert.Equal(t, "Low risk of bias across all domains", o.Rationale)
	assert.Empty(t, o.Contributing)
	assert.Equal(t, verdict.Counts{Low: 5}, o.Counts)
}

func levels(rs ...verdict.RiskLevel) []verdict.DomainLevel {
	ls := make([]verdict.DomainLevel, len(rs))
	for i, r := range rs {
		ls[i] = verdict.DomainLevel{Domain: domainOrder[i], Risk: r}
	}
	return ls
}

func TestCombine(t *testing.T) {
	const (
		L  = verdict.Low
		SC = verdict.SomeConcerns
		H  = verdict.High
	)
	tests := []struct {
		name         string
		in           []verdict.DomainLevel
		want         verdict.RiskLevel
		contributing []string
		rationale    string
	}{
		{
			name:      "all low",
			in:        levels(L, L, L, L, L),
			want:      L,
			rationale: "Low risk of bias across all domains",
		},
		{
			name:         "one high",
			in:           levels(L, L, H, L, SC),
			want:         H,
			contributing: []string{MissingData},
			rationale:    "High risk of bias in: Domain 3 (Missing data)",
		},
		{
			name:         "two some concerns",
			in:           levels(SC, L, L, SC, L),
			want:         SC,
			contributing: []string{Randomization, OutcomeMeasurement},
			rationale:    "Some concerns identified in: Domain 1 (Randomization), Domain 4 (Outcome measurement)",
		},
		{
			name:         "three some concerns escalate",
			in:           levels(SC, SC, L, L, SC),
			want:         H,
			contributing: []string{Randomization, Deviations, SelectiveReporting},
			rationale:    "Some concerns in multiple domains substantially lower confidence: Domain 1 (Randomization), Domain 2 (Deviations), Domain 5 (Selective reporting)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Combine(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Risk)
			assert.Equal(t, tt.want, o.Computed)
			assert.Equal(t, tt.contributing, o.Contributing)
			assert.Equal(t, tt.rationale, o.Rationale)
		})
	}
}

// A single High forces High whatever the other four domains are.
func TestCombineAnyHighIsHigh(t *testing.T) {
	fillers := []verdict.RiskLevel{verdict.Low, verdict.SomeConcerns}
	for pos := range domainOrder {
		for mask := 0; mask < 1<<4; mask++ {
			rs := make([]verdict.RiskLevel, 0, len(domainOrder))
			bit := 0
			for i := range domainOrder {
				if i == pos {
					rs = append(rs, verdict.High)
					continue
				}
				rs = append(rs, fillers[(mask>>bit)&1])
				bit++
			}

			o, err := Combine(levels(rs...))
			require.NoError(t, err)
			assert.Equal(t, verdict.High, o.Risk, "levels %v", rs)
			assert.Equal(t, []string{domainOrder[pos]}, o.Contributing, "levels %v", rs)
		}
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		in         []verdict.DomainLevel
		summary    string
		confidence string
		first      string
		concerns   string
	}{
		{
			name:       "low",
			in:         levels(verdict.Low, verdict.Low, verdict.Low, verdict.Low, verdict.Low),
			summary:    "This study has low risk of bias for this outcome.",
			confidence: "High confidence",
			first:      "Results can be interpreted with confidence",
		},
		{
			name:       "some concerns",
			in:         levels(verdict.Low, verdict.SomeConcerns, verdict.Low, verdict.Low, verdict.Low),
			summary:    "This study raises some concerns about bias for this outcome.",
			confidence: "Moderate confidence",
			first:      "Results should be interpreted with some caution",
		},
		{
			name:       "high",
			in:         levels(verdict.High, verdict.Low, verdict.High, verdict.Low, verdict.Low),
			summary:    "This study has high risk of bias for this outcome.",
			confidence: "Low confidence",
			first:      "Results should be interpreted with significant caution",
			concerns:   "Primary concerns: Randomization, Missing data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Combine(tt.in)
			require.NoError(t, err)
			in := New().Interpret(o)
			assert.Equal(t, tt.summary, in.Summary)
			assert.Equal(t, tt.confidence, in.Confidence)
			require.NotEmpty(t, in.Recommendations)
			assert.Equal(t, tt.first, in.Recommendations[0])
			if tt.concerns != "" {
				assert.Equal(t, tt.concerns, in.Recommendations[len(in.Recommendations)-1])
			} else {
				for _, r := range in.Recommendations {
					assert.NotContains(t, r, "Primary concerns")
				}
			}
		})
	}

	t.Run("follows override", func(t *testing.T) {
		o, err := Combine(levels(verdict.Low, verdict.Low, verdict.Low, verdict.Low, verdict.Low))
		require.NoError(t, err)
		o, err = verdict.ApplyOverride(o, &verdict.Override{Risk: verdict.High, Justification: "sponsor wrote the report"})
		require.NoError(t, err)
		in := Interpret(o)
		assert.Equal(t, "Low confidence", in.Confidence)
		assert.Len(t, in.Recommendations, 5)
	})

	t.Run("recommendations are copies", func(t *testing.T) {
		o, err := Combine(levels(verdict.Low, verdict.Low, verdict.Low, verdict.Low, verdict.Low))
		require.NoError(t, err)
		Interpret(o).Recommendations[0] = "changed"
		assert.Equal(t, "Results can be interpreted with confidence", Interpret(o).Recommendations[0])
	})
}

func TestCombineOrderIndependent(t *testing.T) {
	in := levels(verdict.SomeConcerns, verdict.Low, verdict.Low, verdict.SomeConcerns, verdict.Low)
	reversed := make([]verdict.DomainLevel, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}

	a, err := Combine(in)
	require.NoError(t, err)
	b, err := Combine(reversed)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("combine depends on input order (-a +b):\n%s", diff)
	}
}

func TestCombineRejects(t *testing.T) {
	t.Run("missing domain", func(t *testing.T) {
		_, err := Combine(levels(verdict.Low, verdict.Low, verdict.Low, verdict.Low))
		var incomplete *response.IncompleteInputError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, []string{SelectiveReporting}, incomplete.Missing)
	})

	t.Run("unknown domain", func(t *testing.T) {
		ls := append(levels(verdict.Low, verdict.Low, verdict.Low, verdict.Low, verdict.Low),
			verdict.DomainLevel{Domain: "domain_6", Risk: verdict.Low})
		_, err := Combine(ls)
		assert.ErrorIs(t, err, verdict.ErrUnknownDomain)
	})

	t.Run("very high", func(t *testing.T) {
		_, err := Combine(levels(verdict.Low, verdict.VeryHigh, verdict.Low, verdict.Low, verdict.Low))
		assert.ErrorIs(t, err, verdict.ErrUnknownRiskLevel)
		assert.NotContains(t, New().Levels(), verdict.VeryHigh)
	})
}

func TestCombineWithOverride(t *testing.T) {
	o, err := Combine(levels(verdict.SomeConcerns, verdict.SomeConcerns, verdict.SomeConcerns, verdict.Low, verdict.Low))
	require.NoError(t, err)

	o, err = verdict.ApplyOverride(o, &verdict.Override{Risk: verdict.SomeConcerns, Justification: "concerns are minor and unrelated"})
	require.NoError(t, err)
	assert.Equal(t, verdict.SomeConcerns, o.Risk)
	assert.Equal(t, verdict.High, o.Computed)
	assert.Contains(t, o.Rationale, "[Override: changed from 'High' to 'Some concerns' - concerns are minor and unrelated]")

	_, err = verdict.ApplyOverride(o, &verdict.Override{Risk: verdict.Low})
	assert.True(t, errors.Is(err, verdict.ErrOverrideWithoutJustification))
}

// Every answer combination must reach a verdict on the trial scale.
func TestCoverage(t *testing.T) {
	for _, d := range New().Domains() {
		t.Run(d.ID(), func(t *testing.T) {
			c := rules.Cover(d)
			assert.Equal(t, rules.Size(d.Questions()), c.Total)
			assert.Zero(t, c.ByRisk[verdict.VeryHigh])
			assert.Equal(t, c.Total, c.ByRisk[verdict.Low]+c.ByRisk[verdict.SomeConcerns]+c.ByRisk[verdict.High])
			for _, id := range c.RuleIDs() {
				assert.True(t, strings.HasPrefix(id, d.ID()+"."), id)
			}
		})
	}
}

func TestRandomizationNeverFallsBack(t *testing.T) {
	d, _ := New().Domain(Randomization)
	assert.Zero(t, rules.Cover(d).Fallback)
}

func TestDeterministic(t *testing.T) {
	raw := answers("2.1 2.2 2.3 2.4 2.5 2.6 2.7", "PY", "NI", "Y", "NI", "N", "NI", "PN")
	first := evaluate(t, Deviations, raw)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, evaluate(t, Deviations, raw)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}
