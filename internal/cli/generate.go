package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/logging"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic daily sales history",
	Long: `Generate a synthetic daily sales history for every catalog product.

Demand follows the festival calendar, monsoon and summer seasonality,
weekend uplift and sale pricing.

Examples:
  shampoo-trainer generate --output data/shampoo_sales.csv
  shampoo-trainer generate --output data/sales.xlsx --start 2023-01-01 --days 365`,
	RunE: runGenerate,
}

// Flags
var (
	generateOutput  string
	generateStart   string
	generateDays    int
	generateSeed    uint64
	generateNoise   float64
	generateCatalog string
)

func init() {
	defaults := dataset.DefaultGeneratorConfig()
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "data/shampoo_sales.csv", "Output file (.csv or .xlsx)")
	generateCmd.Flags().StringVar(&generateStart, "start", defaults.Start.Format(features.DateLayout), "First date (YYYY-MM-DD)")
	generateCmd.Flags().IntVar(&generateDays, "days", defaults.Days, "Number of days to generate")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", defaults.Seed, "Random seed")
	generateCmd.Flags().Float64Var(&generateNoise, "noise", defaults.NoiseStdDev, "Standard deviation of daily demand noise")
	generateCmd.Flags().StringVar(&generateCatalog, "catalog", "", "Product catalog JSON (default: built-in catalog)")
}

func loadCatalog(path string) (*dataset.Catalog, error) {
	if path == "" {
		return dataset.DefaultCatalog(), nil
	}
	return dataset.LoadCatalog(path)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	start, err := time.Parse(features.DateLayout, generateStart)
	if err != nil {
		return fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", generateStart)
	}
	if generateDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	catalog, err := loadCatalog(generateCatalog)
	if err != nil {
		return err
	}

	records := dataset.Generate(catalog, dataset.GeneratorConfig{
		Start:       start,
		Days:        generateDays,
		Seed:        generateSeed,
		NoiseStdDev: generateNoise,
	})
	if err := os.MkdirAll(filepath.Dir(generateOutput), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := dataset.Save(generateOutput, records); err != nil {
		return err
	}

	logging.Info().
		Str("output", generateOutput).
		Int("rows", len(records)).
		Int("products", len(catalog.Products())).
		Msg("dataset generated")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(records), generateOutput)
	return nil
}
