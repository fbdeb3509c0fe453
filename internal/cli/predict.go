package cli

import (
	"fmt"

	"shampoo-demand-api/pkg/models"
	"shampoo-demand-api/pkg/services"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict units sold for one scenario from local artifacts",
	Long: `Run a single prediction against local artifacts without starting the server.
The output is the same JSON the API returns.

Examples:
  shampoo-trainer predict --product "H&S Cool Menthol (650ml)" --date 2024-10-02 \
    --price 467 --spend 6000 --event "National Sale"`,
	RunE: runPredict,
}

// Flags
var (
	predictDir     string
	predictCatalog string
	predictDate    string
	predictProduct string
	predictPrice   float64
	predictSpend   float64
	predictEvent   string
)

func init() {
	predictCmd.Flags().StringVar(&predictDir, "dir", "artifacts", "Artifact directory")
	predictCmd.Flags().StringVar(&predictCatalog, "catalog", "", "Product catalog JSON (default: built-in catalog)")
	predictCmd.Flags().StringVar(&predictDate, "date", "", "Scenario date (YYYY-MM-DD)")
	predictCmd.Flags().StringVar(&predictProduct, "product", "", "Product name")
	predictCmd.Flags().Float64Var(&predictPrice, "price", 0, "Price in INR")
	predictCmd.Flags().Float64Var(&predictSpend, "spend", 0, "Marketing spend in INR")
	predictCmd.Flags().StringVar(&predictEvent, "event", "Normal Day", "Event type")
	_ = predictCmd.MarkFlagRequired("date")
	_ = predictCmd.MarkFlagRequired("product")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	b, err := loadBundle(predictDir)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(predictCatalog)
	if err != nil {
		return err
	}

	svc := services.NewPredictionServiceFromBundle(b, catalog.Lookup())
	resp, err := svc.Predict(cmd.Context(), models.PredictionRequest{
		Date:              predictDate,
		ProductName:       predictProduct,
		PriceInr:          predictPrice,
		MarketingSpendInr: predictSpend,
		EventType:         predictEvent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", services.ErrorCode(err), err)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
