package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/runway"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the runway for the given inputs",
	Args:  cobra.NoArgs,
	RunE:  runCompute,
}

func init() {
	addInputFlags(computeCmd)
	rootCmd.AddCommand(computeCmd)
}

// inputsFromFlags validates the flag values after clamping months to the UI range
func inputsFromFlags() (models.RunwayInputs, error) {
	in := models.RunwayInputs{
		CurrentSalary:    flagSalary,
		MonthlyExpenses:  flagExpenses,
		TransitionMonths: runway.ClampMonths(flagMonths),
		TargetSalary:     flagTarget,
	}
	if err := runway.Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

func runCompute(cmd *cobra.Command, _ []string) error {
	in, err := inputsFromFlags()
	if err != nil {
		return err
	}
	res := runway.Compute(in)

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, struct {
			Inputs models.RunwayInputs `json:"inputs"`
			Result models.RunwayResult `json:"result"`
		}{in, res})
	}
	fmt.Fprintln(out, renderResult(in, res))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
