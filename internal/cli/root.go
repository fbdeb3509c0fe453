// Package cli implements the offline trainer: dataset generation, model
// training and artifact inspection.
package cli

import (
	"fmt"
	"os"

	"shampoo-demand-api/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "shampoo-trainer",
	Short: "Train and inspect shampoo demand models",
	Long: `shampoo-trainer builds the artifacts served by the demand prediction API.

Generate a synthetic sales history, fit a regressor on it and write
model.json and columns.json for the server to load.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(logging.Config{Level: logLevel, Format: logFormat, Output: cmd.ErrOrStderr()})
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console, json")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(predictCmd)
}
