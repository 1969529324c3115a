package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robkit/internal/answerset"
	"robkit/internal/assessment"
	"robkit/internal/config"
	"robkit/internal/verdict"
)

// execute runs the root command with fresh flag values. A temporary config
// path is used unless args name one.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append(args, "--config", filepath.Join(t.TempDir(), "robkit.yaml"))
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func trialLow() map[string]map[string]string {
	return map[string]map[string]string{
		"domain_1": {"1.1": "Y", "1.2": "Y", "1.3": "N"},
		"domain_2": {"2.1": "N", "2.2": "N", "2.3": "NA", "2.4": "NA", "2.5": "NA", "2.6": "Y", "2.7": "NA"},
		"domain_3": {"3.1": "Y", "3.2": "NA", "3.3": "NA", "3.4": "NA"},
		"domain_4": {"4.1": "N", "4.2": "N", "4.3": "N", "4.4": "NA", "4.5": "NA"},
		"domain_5": {"5.1": "Y", "5.2": "N", "5.3": "N"},
	}
}

func saveSet(t *testing.T, name string, s *answerset.Set) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, s.Save(p))
	return p
}

func TestDomainCommand(t *testing.T) {
	out, err := execute(t, "domain", "domain_1", "1.1=Y", "1.2=probably yes", "1.3=N", "--output", "json")
	require.NoError(t, err)

	var v verdict.DomainVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, verdict.Low, v.Risk)
	assert.Equal(t, "1.1→Y, 1.2→PY, 1.3→N", v.PathwayString())

	_, err = execute(t, "domain", "domain_1", "1.1")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = execute(t, "domain", "domain_1", "1.1=Y", "1.2=Y", "1.3=maybe")
	assert.ErrorContains(t, err, "1.3")
}

func TestAssessCommand(t *testing.T) {
	good := saveSet(t, "good.yaml", &answerset.Set{Study: "Trial 1", Domains: trialLow()})

	out, err := execute(t, "assess", good, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: Low.")

	out, err = execute(t, "assess", good, "-o", "json")
	require.NoError(t, err)
	var a assessment.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "Trial 1", a.Study)
	assert.Len(t, a.Domains, 5)

	partial := trialLow()
	delete(partial, "domain_4")
	bad := saveSet(t, "bad.json", &answerset.Set{Instrument: "rob2", Domains: partial})

	out, err = execute(t, "assess", good, bad, "--summary")
	assert.ErrorContains(t, err, "1 of 2 answer files failed")
	assert.Contains(t, out, good+": RoB 2")
	assert.Contains(t, out, bad+": error:")
}

func TestAssessTable(t *testing.T) {
	high := trialLow()
	high["domain_3"] = map[string]string{"3.1": "N", "3.2": "N", "3.3": "Y", "3.4": "Y"}
	a := saveSet(t, "a.yaml", &answerset.Set{Study: "Smith 2021", Domains: trialLow()})
	b := saveSet(t, "b.yaml", &answerset.Set{Study: "A very long study title that does not fit", Domains: high})
	c := saveSet(t, "c.yaml", &answerset.Set{Study: "Cohort", Instrument: "robins-e", Levels: map[string]string{
		"domain_1": "low", "domain_2": "low", "domain_3": "very high", "domain_4": "low",
		"domain_5": "low", "domain_6": "low", "domain_7": "low",
	}})

	out, err := execute(t, "assess", a, b, c, "--table")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6, out)

	header := strings.Fields(strings.ReplaceAll(lines[0], "|", " "))
	assert.Equal(t, []string{"Study", "Instrument", "D1", "D2", "D3", "D4", "D5", "D6", "D7", "Overall"}, header)
	assert.NotContains(t, out, "\x1b[", "no color codes outside a terminal")

	cells := func(line string) []string {
		var out []string
		for _, c := range strings.Split(line, "|") {
			out = append(out, strings.TrimSpace(c))
		}
		return out
	}
	assert.Equal(t, []string{"Smith 2021", "rob2", "L", "L", "L", "L", "L", "", "", "L"}, cells(lines[2]))
	assert.Equal(t, []string{"A very long study title", "rob2", "L", "L", "H", "L", "L", "", "", "H"}, cells(lines[3]))
	assert.Equal(t, []string{"Cohort", "robins-e (B)", "-", "-", "-", "-", "-", "-", "-", "VH"}, cells(lines[4]))
	assert.Contains(t, out, "Legend: L = Low risk, SC = Some concerns, H = High risk, VH = Very high risk")
	assert.Contains(t, out, "D1 = Bias arising from the randomization process")

	partial := trialLow()
	delete(partial, "domain_4")
	bad := saveSet(t, "bad.yaml", &answerset.Set{Domains: partial})
	out, err = execute(t, "assess", a, bad, "--table")
	assert.ErrorContains(t, err, "1 of 2 answer files failed")
	assert.Contains(t, out, "error: "+bad)
}

func TestRecombineCommand(t *testing.T) {
	levels := []string{"domain_1=low", "domain_2=some concerns", "domain_3=low", "domain_4=low", "domain_5=low"}

	out, err := execute(t, append([]string{"recombine"}, levels...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "risk: some_concerns")

	_, err = execute(t, append([]string{"recombine", "--override", "high"}, levels...)...)
	assert.ErrorIs(t, err, verdict.ErrOverrideWithoutJustification)

	out, err = execute(t, append([]string{"recombine", "--override", "high", "--justification", "sponsor involvement"}, levels...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "risk: high")
	assert.Contains(t, out, "sponsor involvement")

	_, err = execute(t, append([]string{"recombine", "--override", "very_high", "--justification", "x"}, levels...)...)
	assert.ErrorIs(t, err, verdict.ErrUnknownRiskLevel)

	_, err = execute(t, "recombine", "-i", "robins-e", "domain_1=low")
	assert.Error(t, err)
}

func TestCompareCommand(t *testing.T) {
	auto := trialLow()
	auto["domain_5"]["5.2"] = "Y"
	h := saveSet(t, "human.yaml", &answerset.Set{Instrument: "rob2", Domains: trialLow()})
	a := saveSet(t, "auto.json", &answerset.Set{Domains: auto})

	out, err := execute(t, "compare", h, a)
	require.NoError(t, err)
	assert.Contains(t, out, "question: \"5.2\"")

	_, err = execute(t, "compare", h, a, "--fail-on-divergence")
	assert.ErrorContains(t, err, "answer sets diverge")

	_, err = execute(t, "compare", h, h, "--fail-on-divergence")
	assert.NoError(t, err)
}

func TestQuestionsCommand(t *testing.T) {
	out, err := execute(t, "questions", "-i", "robins-e", "--variant", "A", "domain_1")
	require.NoError(t, err)
	assert.Contains(t, out, "domain: domain_1")
	assert.Contains(t, out, "\"1.4\"")
	assert.NotContains(t, out, "\"1.5\"")

	_, err = execute(t, "questions", "domain_9")
	assert.ErrorContains(t, err, "no domain domain_9")
}

func TestCoverageCommand(t *testing.T) {
	out, err := execute(t, "coverage", "domain_1")
	require.NoError(t, err)
	assert.Contains(t, out, "125 combinations")
	assert.Contains(t, out, "domain_1.low")

	out, err = execute(t, "coverage", "domain_2", "--max", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "robkit.yaml")

	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rob2", cfg.Engine.Instrument)

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestConfigDrivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robkit.yaml")
	c := config.DefaultConfig()
	c.Engine.Instrument = "robins-e"
	c.Engine.Variant = "A"
	c.Engine.Output = "json"
	require.NoError(t, c.Save(path))

	out, err := execute(t, "questions", "--config", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["), out)
	assert.Contains(t, out, `"domain_7"`)
}

func TestProposeNeedsKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	study := filepath.Join(t.TempDir(), "study.txt")
	require.NoError(t, os.WriteFile(study, []byte("Participants were randomized."), 0644))

	_, err := execute(t, "propose", study)
	assert.ErrorContains(t, err, "API key not configured")
}
