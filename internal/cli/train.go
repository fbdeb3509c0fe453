package cli

import (
	"fmt"

	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/logging"
	"shampoo-demand-api/pkg/predictor"
	"shampoo-demand-api/pkg/services"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a regressor and write model artifacts",
	Long: `Fit a regressor on a historical sales dataset and write model.json and
columns.json into the artifact directory.

The feature schema is frozen from the categories observed in the dataset.
Rows are shuffled with the seed and split into train and test sets.

Examples:
  shampoo-trainer train --data data/shampoo_sales.csv
  shampoo-trainer train --data data/sales.xlsx --kind ridge --out artifacts`,
	RunE: runTrain,
}

// Flags
var (
	trainData         string
	trainOut          string
	trainKind         string
	trainTestFraction float64
	trainSeed         uint64
	trainTrees        int
	trainMaxDepth     int
	trainMinLeaf      int
	trainMaxFeatures  float64
	trainAlpha        float64
)

func init() {
	defaults := services.DefaultTrainingConfig()
	trainCmd.Flags().StringVarP(&trainData, "data", "d", "data/shampoo_sales.csv", "Training dataset (.csv or .xlsx)")
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "artifacts", "Artifact output directory")
	trainCmd.Flags().StringVarP(&trainKind, "kind", "k", string(defaults.Kind), "Regressor: random_forest, ridge")
	trainCmd.Flags().Float64Var(&trainTestFraction, "test-fraction", defaults.TestFraction, "Fraction of rows held out for evaluation")
	trainCmd.Flags().Uint64Var(&trainSeed, "seed", defaults.Seed, "Random seed for the split and the forest")
	trainCmd.Flags().IntVar(&trainTrees, "trees", defaults.Forest.NumTrees, "Number of trees (random_forest)")
	trainCmd.Flags().IntVar(&trainMaxDepth, "max-depth", defaults.Forest.MaxDepth, "Maximum tree depth (random_forest)")
	trainCmd.Flags().IntVar(&trainMinLeaf, "min-leaf", defaults.Forest.MinSamplesLeaf, "Minimum samples per leaf (random_forest)")
	trainCmd.Flags().Float64Var(&trainMaxFeatures, "max-features", defaults.Forest.MaxFeatures, "Fraction of features tried per split (random_forest)")
	trainCmd.Flags().Float64Var(&trainAlpha, "alpha", defaults.RidgeAlpha, "L2 penalty (ridge)")
}

func trainingConfig() services.TrainingConfig {
	cfg := services.DefaultTrainingConfig()
	cfg.Kind = predictor.Kind(trainKind)
	cfg.TestFraction = trainTestFraction
	cfg.Seed = trainSeed
	cfg.Forest.NumTrees = trainTrees
	cfg.Forest.MaxDepth = trainMaxDepth
	cfg.Forest.MinSamplesLeaf = trainMinLeaf
	cfg.Forest.MaxFeatures = trainMaxFeatures
	cfg.Forest.Seed = trainSeed
	cfg.RidgeAlpha = trainAlpha
	return cfg
}

func runTrain(cmd *cobra.Command, _ []string) error {
	records, err := dataset.Load(trainData)
	if err != nil {
		return err
	}
	logging.Info().Str("data", trainData).Int("rows", len(records)).Msg("dataset loaded")

	b, err := services.NewTrainingService(trainingConfig()).TrainAndSave(cmd.Context(), records, trainOut)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model %s (%s) trained on %d rows, %d features\n", b.Version, b.Regressor.Kind(), b.TrainingRows, b.Schema.Len())
	fmt.Fprintf(out, "  train  R2=%.4f  MAE=%.2f\n", b.Metrics.Train.R2, b.Metrics.Train.MAE)
	fmt.Fprintf(out, "  test   R2=%.4f  MAE=%.2f\n", b.Metrics.Test.R2, b.Metrics.Test.MAE)
	fmt.Fprintf(out, "Artifacts written to %s\n", trainOut)
	return nil
}
