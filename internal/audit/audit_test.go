package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robkit/internal/response"
	"robkit/internal/verdict"
)

func side(overall verdict.RiskLevel, answers map[string]response.Answers, risks map[string]verdict.RiskLevel) Side {
	s := Side{Answers: answers, Overall: overall}
	for _, d := range []string{"domain_1", "domain_2"} {
		if r, ok := risks[d]; ok {
			s.Domains = append(s.Domains, verdict.DomainVerdict{Domain: d, Risk: r})
		}
	}
	return s
}

func TestRunAgreement(t *testing.T) {
	answers := map[string]response.Answers{
		"domain_1": {"1.1": response.Yes, "1.2": response.Yes, "1.3": response.No},
	}
	s := side(verdict.Low, answers, map[string]verdict.RiskLevel{"domain_1": verdict.Low})

	r, err := Run(s, s)
	require.NoError(t, err)
	assert.False(t, r.Diverges())
	assert.Equal(t, 3, r.Compared)
	assert.Equal(t, 1.0, r.Agreement)
	assert.Empty(t, r.Masked)
}

func TestRunDivergences(t *testing.T) {
	h := side(verdict.SomeConcerns, map[string]response.Answers{
		"domain_1": {"1.1": response.Yes, "1.2": response.Yes, "1.3": response.No},
		"domain_2": {"2.4": response.No, "2.10": response.No},
	}, map[string]verdict.RiskLevel{"domain_1": verdict.Low, "domain_2": verdict.SomeConcerns})

	a := side(verdict.High, map[string]response.Answers{
		"domain_1": {"1.1": response.ProbablyYes, "1.2": response.Yes, "1.3": response.No},
		"domain_2": {"2.4": response.Yes, "2.10": response.NoInformation},
	}, map[string]verdict.RiskLevel{"domain_1": verdict.Low, "domain_2": verdict.High})

	r, err := Run(h, a)
	require.NoError(t, err)

	wantAnswers := []AnswerDivergence{
		{Domain: "domain_1", Question: "1.1", Human: response.Yes, Automated: response.ProbablyYes},
		{Domain: "domain_2", Question: "2.4", Human: response.No, Automated: response.Yes},
		{Domain: "domain_2", Question: "2.10", Human: response.No, Automated: response.NoInformation},
	}
	if diff := cmp.Diff(wantAnswers, r.Answers); diff != "" {
		t.Errorf("answer divergences mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []DomainDivergence{{Domain: "domain_2", Human: verdict.SomeConcerns, Automated: verdict.High}}, r.Domains)
	assert.Equal(t, []string{"domain_1"}, r.Masked)
	require.NotNil(t, r.Overall)
	assert.Equal(t, OverallDivergence{Human: verdict.SomeConcerns, Automated: verdict.High}, *r.Overall)
	assert.Equal(t, 5, r.Compared)
	assert.InDelta(t, 0.4, r.Agreement, 1e-9)
	assert.True(t, r.Diverges())
}

func TestRunOnlyComparesSharedQuestions(t *testing.T) {
	h := side(0, map[string]response.Answers{"domain_1": {"1.1": response.Yes, "1.2": response.No}}, nil)
	a := side(0, map[string]response.Answers{"domain_1": {"1.1": response.Yes}}, nil)

	r, err := Run(h, a)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Compared)
	assert.Empty(t, r.Answers)
	assert.Nil(t, r.Overall)
}

func TestEngine(t *testing.T) {
	e, err := NewEngine(`
Decl edge(X, Y).
Decl reach(X, Y).
reach(X, Y) :- edge(X, Y).
reach(X, Z) :- reach(X, Y), edge(Y, Z).
`, 3)
	require.NoError(t, err)

	require.NoError(t, e.AddFact("edge", "/a", "b"))
	require.NoError(t, e.AddFact("edge", "b", "c"))
	require.NoError(t, e.AddFact("edge", "b", "c"), "duplicate facts do not count against the limit")

	assert.ErrorContains(t, e.AddFact("edge", "c"), "expects 2 args")
	assert.ErrorContains(t, e.AddFact("path", "a", "b"), "not declared")

	require.NoError(t, e.Eval())
	rows, err := e.GetFacts("reach")
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]string{{"/a", "b"}, {"/a", "c"}, {"b", "c"}}, rows)

	require.NoError(t, e.AddFact("edge", "c", "d"))
	assert.ErrorContains(t, e.AddFact("edge", "d", "e"), "fact limit exceeded")

	_, err = NewEngine("reach(X) :- ", 0)
	assert.Error(t, err)
}

func TestLessID(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"5.4", "5.10", true},
		{"5.10", "5.4", false},
		{"5.1-5.3", "5.4", true},
		{"1.2", "1.2", false},
		{"2.1", "10.1", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lessID(tt.a, tt.b), "%s < %s", tt.a, tt.b)
	}
}
