package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/features"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the contents of model artifacts",
	Long: `Load model.json and columns.json exactly as the server does and print
the model metadata, evaluation metrics and feature schema.

Examples:
  shampoo-trainer inspect --dir artifacts
  shampoo-trainer inspect --dir artifacts --columns`,
	RunE: runInspect,
}

// Flags
var (
	inspectDir     string
	inspectColumns bool
)

func init() {
	inspectCmd.Flags().StringVar(&inspectDir, "dir", "artifacts", "Artifact directory")
	inspectCmd.Flags().BoolVar(&inspectColumns, "columns", false, "List every feature column in schema order")
}

func loadBundle(dir string) (*artifact.Bundle, error) {
	return artifact.Load(filepath.Join(dir, artifact.DefaultModelFile), filepath.Join(dir, artifact.DefaultSchemaFile))
}

func runInspect(cmd *cobra.Command, _ []string) error {
	b, err := loadBundle(inspectDir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", b.Version)
	fmt.Fprintf(w, "Kind:\t%s\n", b.Regressor.Kind())
	fmt.Fprintf(w, "Trained at:\t%s\n", b.TrainedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Training rows:\t%d\n", b.TrainingRows)
	fmt.Fprintf(w, "Train R2 / MAE:\t%.4f / %.2f\n", b.Metrics.Train.R2, b.Metrics.Train.MAE)
	fmt.Fprintf(w, "Test R2 / MAE:\t%.4f / %.2f (n=%d)\n", b.Metrics.Test.R2, b.Metrics.Test.MAE, b.Metrics.Test.N)
	fmt.Fprintf(w, "Features:\t%d\n", b.Schema.Len())
	fmt.Fprintf(w, "Fingerprint:\t%s\n", b.Schema.Fingerprint())
	for _, axis := range features.Axes() {
		d := b.Schema.Registry().Domain(axis)
		fmt.Fprintf(w, "%s:\t%d values\n", axis, d.Len())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if inspectColumns {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(b.Schema.Columns(), "\n"))
	}
	return nil
}
