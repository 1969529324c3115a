package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"robkit/internal/assessment"
	"robkit/internal/config"
	"robkit/internal/rules"
)

var (
	maxCombinations int
	forceConfig     bool
)

// questionsCmd prints the question catalogue
var questionsCmd = &cobra.Command{
	Use:   "questions [domain-id]",
	Short: "List the signalling questions of an instrument",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuestions,
}

// coverageCmd enumerates every answer combination of each domain
var coverageCmd = &cobra.Command{
	Use:   "coverage [domain-id...]",
	Short: "Report how each rule partitions a domain's answer space",
	Long: `Runs every combination of a domain's answer alphabets through its rules
and counts how many each rule decides. Combinations that reach the fallback
are unclassified by the published decision tree.`,
	RunE: runCoverage,
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the robkit config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to --config",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Proposer.APIKey != "" {
			shown.Proposer.APIKey = "********"
		}
		return writeOutput(cmd.OutOrStdout(), &shown)
	},
}

func init() {
	coverageCmd.Flags().IntVar(&maxCombinations, "max", 2_000_000, "Skip domains with more combinations than this (0 = no limit)")
	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

type domainQuestions struct {
	Domain    string     `json:"domain" yaml:"domain"`
	Name      string     `json:"name" yaml:"name"`
	Questions []question `json:"questions" yaml:"questions"`
}

type question struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Answers string `json:"answers" yaml:"answers"`
}

func selectDomains(inst assessment.Instrument, ids []string) ([]rules.Domain, error) {
	if len(ids) == 0 {
		return inst.Domains(), nil
	}
	out := make([]rules.Domain, 0, len(ids))
	for _, id := range ids {
		d, ok := inst.Domain(id)
		if !ok {
			return nil, fmt.Errorf("%s has no domain %s", inst.Title(), id)
		}
		out = append(out, d)
	}
	return out, nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	inst, err := lookupInstrument(instrumentFlag, variantFlag)
	if err != nil {
		return err
	}
	ds, err := selectDomains(inst, args)
	if err != nil {
		return err
	}

	out := make([]domainQuestions, 0, len(ds))
	for _, d := range ds {
		dq := domainQuestions{Domain: d.ID(), Name: d.Name()}
		for _, q := range d.Questions() {
			dq.Questions = append(dq.Questions, question{ID: q.ID, Text: q.Text, Answers: q.Alphabet.String()})
		}
		out = append(out, dq)
	}
	return writeOutput(cmd.OutOrStdout(), out)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	inst, err := lookupInstrument(instrumentFlag, variantFlag)
	if err != nil {
		return err
	}
	ds, err := selectDomains(inst, args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n\n", inst.Title())
	for _, d := range ds {
		size := rules.Size(d.Questions())
		if maxCombinations > 0 && size > maxCombinations {
			fmt.Fprintf(w, "%s\t%s\tskipped: %d combinations\n\n", d.ID(), d.Name(), size)
			continue
		}
		c := rules.Cover(d)
		fmt.Fprintf(w, "%s\t%s\t%d combinations, %d unclassified\n", d.ID(), d.Name(), c.Total, c.Fallback)
		for _, id := range sortedKeys(c.ByRule) {
			fmt.Fprintf(w, "\t%s\t%d\n", id, c.ByRule[id])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !forceConfig {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}
	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", configPath)
	return nil
}
