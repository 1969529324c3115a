package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"robkit/internal/answerset"
	"robkit/internal/assessment"
	"robkit/internal/verdict"
)

var (
	instrumentFlag string
	variantFlag    string
	summaryFlag    bool
	tableFlag      bool
	overrideRisk   string
	overrideReason string
)

// domainCmd evaluates one domain from answers on the command line
var domainCmd = &cobra.Command{
	Use:   "domain [domain-id] [question=answer...]",
	Short: "Evaluate a single domain",
	Long: `Evaluates one domain and prints its verdict with the pathway.

Example:
  robkit domain domain_1 1.1=Y 1.2=PY 1.3=N
  robkit domain --instrument robins-e --variant A domain_1 1.1=WN 1.2=Y 1.3=N 1.4=NA`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDomain,
}

// assessCmd evaluates answer files
var assessCmd = &cobra.Command{
	Use:   "assess [answer-file...]",
	Short: "Evaluate every domain of one or more answer files",
	Long: `Evaluates answer files and prints one assessment per file.

A file that names no instrument or variant uses --instrument/--variant, then
the config defaults. Several files are evaluated concurrently; a failing file
is reported without stopping the others. --table prints one row per study
with each domain's level abbreviated (L, SC, H, VH).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssess,
}

// recombineCmd derives the overall verdict from domain levels alone
var recombineCmd = &cobra.Command{
	Use:   "recombine [domain=level...]",
	Short: "Combine domain risk levels into an overall verdict",
	Long: `Derives the overall verdict from existing domain levels.

Example:
  robkit recombine domain_1=low domain_2=some_concerns domain_3=low domain_4=low domain_5=high
  robkit recombine --instrument robins-e ... --override high --justification "selective cohort"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecombine,
}

func init() {
	for _, c := range []*cobra.Command{domainCmd, assessCmd, recombineCmd, compareCmd, proposeCmd, questionsCmd, coverageCmd} {
		c.Flags().StringVarP(&instrumentFlag, "instrument", "i", "", "Instrument: rob2 or robins-e (default from config)")
		c.Flags().StringVar(&variantFlag, "variant", "", "Confounding variant for robins-e: A or B (default from config)")
	}
	assessCmd.Flags().BoolVar(&summaryFlag, "summary", false, "Print a one-paragraph summary instead of the full assessment")
	assessCmd.Flags().BoolVar(&tableFlag, "table", false, "Print one row per study with abbreviated domain levels")
	recombineCmd.Flags().StringVar(&overrideRisk, "override", "", "Replace the computed overall level")
	recombineCmd.Flags().StringVar(&overrideReason, "justification", "", "Reason for --override")
}

func runDomain(cmd *cobra.Command, args []string) error {
	inst, err := lookupInstrument(instrumentFlag, variantFlag)
	if err != nil {
		return err
	}
	raw, err := parsePairs(args[1:])
	if err != nil {
		return err
	}
	v, err := assessment.EvaluateDomain(inst, args[0], raw)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), v)
}

func runAssess(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && !tableFlag {
		return assessOne(cmd, args[0])
	}

	d := timeout
	if d <= 0 {
		d = cfg.GetBatchTimeout()
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), d)
	defer cancel()

	results, err := assessment.EvaluateBatch(ctx, args, assessment.BatchOptions{
		Concurrency: cfg.Batch.Concurrency,
		Instrument:  defaultString(instrumentFlag, cfg.Engine.Instrument),
		Variant:     defaultString(variantFlag, cfg.Engine.Variant),
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	switch {
	case tableFlag:
		if err := newStudyTable(results).Render(cmd.OutOrStdout()); err != nil {
			return err
		}
	case summaryFlag:
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Path, assessment.Summary(r.Assessment))
		}
	default:
		if err := writeOutput(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d answer files failed", failed, len(results))
	}
	return nil
}

func assessOne(cmd *cobra.Command, path string) error {
	s, err := answerset.Load(path)
	if err != nil {
		return err
	}
	s = s.WithDefaults(defaultString(instrumentFlag, cfg.Engine.Instrument), defaultString(variantFlag, cfg.Engine.Variant))
	a, err := assessment.EvaluateSet(s)
	if err != nil {
		return err
	}
	if summaryFlag {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), assessment.Summary(a))
		return err
	}
	return writeOutput(cmd.OutOrStdout(), a)
}

func runRecombine(cmd *cobra.Command, args []string) error {
	inst, err := lookupInstrument(instrumentFlag, variantFlag)
	if err != nil {
		return err
	}
	labels, err := parsePairs(args)
	if err != nil {
		return err
	}

	var ov *verdict.Override
	if overrideRisk != "" {
		r, err := verdict.ParseRiskLevel(overrideRisk)
		if err != nil {
			return fmt.Errorf("--override: %w", err)
		}
		ov = &verdict.Override{Risk: r, Justification: overrideReason}
	}

	o, err := assessment.RecombineLabels(inst, labels, ov)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), o)
}

func defaultString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
