// Command bridgectl runs the runway calculator and plan generator from the
// terminal and performs one-off maintenance tasks.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSalary   float64
	flagExpenses float64
	flagMonths   int
	flagTarget   float64
	flagJSON     bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "bridgectl",
	Short: "Salary bridge runway tool",
	Long:  "Compute a career-transition runway, draft a financial plan and manage the bridge database.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagVerbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// addInputFlags registers the four calculator inputs on cmd
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flagSalary, "salary", 150000, "Current annual salary")
	cmd.Flags().Float64Var(&flagExpenses, "expenses", 6000, "Monthly expenses")
	cmd.Flags().IntVar(&flagMonths, "months", 6, "Transition months (1-24)")
	cmd.Flags().Float64Var(&flagTarget, "target", 110000, "Target annual salary")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
