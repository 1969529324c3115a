package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"robkit/internal/config"
	"robkit/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outputFmt  string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "robkit",
	Short: "Risk-of-bias assessment engine",
	Long: `robkit classifies risk of bias from answers to signalling questions.

Two instruments are supported:
  rob2      five domains, parallel-group randomized trials
  robins-e  seven domains, studies of exposures (confounding variant A or B)

Answers are read from YAML or JSON answer files. Every verdict carries the
pathway of questions that decided it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", configPath, err)
		}
		if !cmd.Flags().Changed("output") && cfg.Engine.Output != "" {
			outputFmt = cfg.Engine.Output
		}
		outputFmt = strings.ToLower(outputFmt)
		if !oneOf(outputFmt, config.ValidOutputs) {
			return fmt.Errorf("invalid output format %q (valid: %s)", outputFmt, strings.Join(config.ValidOutputs, ", "))
		}

		settings := logSettings(cfg.Logging, verbose)
		logger, err = logging.Build(settings, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Initialize(logger, settings)
		logging.Get(logging.CategoryBoot).Debug("config loaded from %s", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Operation timeout (default from config)")

	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(recombineCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logSettings turns the logging config into logger settings. --verbose turns
// debug mode on.
func logSettings(c config.LoggingConfig, verbose bool) logging.Settings {
	return logging.Settings{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		DebugMode:  c.DebugMode || verbose,
		Categories: c.Categories,
	}
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}
