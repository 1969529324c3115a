package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"robkit/internal/answerset"
	"robkit/internal/assessment"
	"robkit/internal/proposer"
)

var (
	proposeOut  string
	proposeEval bool
	failOnDiff  bool
)

// compareCmd compares a human and an automated answer file
var compareCmd = &cobra.Command{
	Use:   "compare [human-file] [automated-file]",
	Short: "Compare human and automated answers for the same study",
	Long: `Evaluates both answer files with the instrument of the human file and
reports every answer, domain verdict and overall verdict that differs.
Domains whose answers differ while their verdicts agree are listed as masked.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

// proposeCmd asks the text-generation model for answers
var proposeCmd = &cobra.Command{
	Use:   "propose [study-text-file]",
	Short: "Propose answers from study text with a text-generation model",
	Long: `Sends the instrument's questions and the study text to the configured
model and writes the proposed answers as an answer file. Proposed answers are
raw input: review them, then run "robkit assess" or "robkit compare".

Requires GEMINI_API_KEY or GOOGLE_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runPropose,
}

func init() {
	compareCmd.Flags().BoolVar(&failOnDiff, "fail-on-divergence", false, "Exit non-zero when the sets diverge")
	proposeCmd.Flags().StringVar(&proposeOut, "out", "", "Write the answer file here instead of stdout")
	proposeCmd.Flags().BoolVar(&proposeEval, "evaluate", false, "Also evaluate the proposed answers")
}

func runCompare(cmd *cobra.Command, args []string) error {
	human, err := answerset.Load(args[0])
	if err != nil {
		return err
	}
	automated, err := answerset.Load(args[1])
	if err != nil {
		return err
	}

	human = human.WithDefaults(defaultString(instrumentFlag, cfg.Engine.Instrument), defaultString(variantFlag, cfg.Engine.Variant))
	inst, hin, err := assessment.FromSet(human)
	if err != nil {
		return err
	}
	other, ain, err := assessment.FromSet(automated.WithDefaults(human.Instrument, human.Variant))
	if err != nil {
		return err
	}
	if other.Name() != inst.Name() || assessment.VariantOf(other) != assessment.VariantOf(inst) {
		return fmt.Errorf("%s and %s use different instruments: %s and %s", args[0], args[1], inst.Title(), other.Title())
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c, err := assessment.Compare(ctx, inst, hin, ain)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), c); err != nil {
		return err
	}
	if failOnDiff && c.Report.Diverges() {
		return fmt.Errorf("answer sets diverge: %d answers, %d domains", len(c.Report.Answers), len(c.Report.Domains))
	}
	return nil
}

func runPropose(cmd *cobra.Command, args []string) error {
	inst, err := lookupInstrument(instrumentFlag, variantFlag)
	if err != nil {
		return err
	}
	study, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read study text: %w", err)
	}
	if cfg.Proposer.APIKey == "" {
		return fmt.Errorf("proposer API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := proposer.NewGenAIClient(ctx, cfg.Proposer.APIKey, cfg.Proposer.Model, cfg.Proposer.Temperature)
	if err != nil {
		return err
	}
	p := proposer.New(client, cfg.Proposer.MaxAttempts, cfg.GetProposerTimeout())
	prop, err := p.Propose(ctx, inst, string(study))
	if err != nil {
		return err
	}

	set := prop.ToSet(inst.Name(), assessment.VariantOf(inst))
	set.Study = args[0]
	if proposeOut != "" {
		if err := set.Save(proposeOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Proposed answers from %s written to %s\n", client.Name(), proposeOut)
	} else if err := writeOutput(cmd.OutOrStdout(), set); err != nil {
		return err
	}

	if proposeEval {
		a, err := assessment.EvaluateSet(set)
		if err != nil {
			return fmt.Errorf("proposed answers do not evaluate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), assessment.Summary(a))
	}
	return nil
}
