package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dan9191/salary-bridge/internal/integrations/gemini"
	"github.com/Dan9191/salary-bridge/internal/narrative"
	"github.com/Dan9191/salary-bridge/internal/runway"
)

var (
	flagAPIKey  string
	flagModel   string
	flagTimeout time.Duration
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Draft a financial plan for the given inputs",
	Long:  "Draft a financial plan with Gemini. Without an API key the built-in fallback plan is printed.",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	addInputFlags(planCmd)
	planCmd.Flags().StringVar(&flagAPIKey, "api-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key")
	planCmd.Flags().StringVar(&flagModel, "model", gemini.DefaultModel, "Gemini model")
	planCmd.Flags().DurationVar(&flagTimeout, "timeout", narrative.DefaultTimeout, "Generation timeout")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	in, err := inputsFromFlags()
	if err != nil {
		return err
	}
	res := runway.Compute(in)

	var gen narrative.Generator
	if flagAPIKey != "" {
		client, err := gemini.NewClient(cmd.Context(), flagAPIKey, flagModel, logger)
		if err != nil {
			return err
		}
		gen = client
	}

	// The result box is rendered while the plan is still being drafted
	pending := narrative.NewAdapter(gen, flagTimeout, logger).GenerateAsync(cmd.Context(), in, res)

	out := cmd.OutOrStdout()
	if !flagJSON {
		fmt.Fprintln(out, renderResult(in, res))
	}
	outcome := <-pending
	if outcome.Err != nil {
		logger.Debugf("Using fallback plan: %v", outcome.Err)
	}

	if flagJSON {
		return writeJSON(out, outcome)
	}
	fmt.Fprintln(out, renderPlan(outcome))
	return nil
}
