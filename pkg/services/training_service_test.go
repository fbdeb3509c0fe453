package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/models"
	"shampoo-demand-api/pkg/predictor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallDataset(days int) []models.SalesRecord {
	cfg := dataset.DefaultGeneratorConfig()
	cfg.Start = time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	cfg.Days = days
	return dataset.Generate(dataset.DefaultCatalog(), cfg)
}

func TestTrainAndServeRoundTrip(t *testing.T) {
	records := smallDataset(60)
	cfg := DefaultTrainingConfig()
	cfg.Forest.NumTrees = 10
	cfg.Forest.MaxDepth = 10

	dir := t.TempDir()
	trained, err := NewTrainingService(cfg).TrainAndSave(context.Background(), records, dir)
	require.NoError(t, err)
	assert.Equal(t, len(records), trained.TrainingRows)
	assert.Equal(t, int(float64(len(records))*0.2+0.5), trained.Metrics.Test.N)
	assert.Greater(t, trained.Metrics.Train.R2, 0.5)

	loaded, err := artifact.Load(filepath.Join(dir, artifact.DefaultModelFile), filepath.Join(dir, artifact.DefaultSchemaFile))
	require.NoError(t, err)
	assert.True(t, trained.Schema.Equal(loaded.Schema))
	assert.Equal(t, trained.Version, loaded.Version)

	svc := NewPredictionServiceFromBundle(loaded, dataset.DefaultCatalog().Lookup())
	assert.Equal(t, string(predictor.KindRandomForest), svc.Info().Kind)

	resp, err := svc.Predict(context.Background(), models.PredictionRequest{
		Date:              "2024-10-02",
		ProductName:       "H&S Cool Menthol (650ml)",
		PriceInr:          467,
		MarketingSpendInr: 6000,
		EventType:         dataset.EventNationalSale,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.PredictedUnitsSold, 0)

	// 学習時と同じ特徴量で同じ出力になること
	again, err := svc.Predict(context.Background(), models.PredictionRequest{
		Date:              "2024-10-02",
		ProductName:       "H&S Cool Menthol (650ml)",
		PriceInr:          467,
		MarketingSpendInr: 6000,
		EventType:         dataset.EventNationalSale,
	})
	require.NoError(t, err)
	assert.Equal(t, resp.PredictedUnitsSold, again.PredictedUnitsSold)
}

func TestTrainRidge(t *testing.T) {
	cfg := DefaultTrainingConfig()
	cfg.Kind = predictor.KindRidge

	b, err := NewTrainingService(cfg).Train(context.Background(), smallDataset(30))
	require.NoError(t, err)
	assert.Equal(t, predictor.KindRidge, b.Regressor.Kind())
	assert.Equal(t, b.Schema.Len(), b.Regressor.NumFeatures())
}

func TestTrainSplitIsDeterministic(t *testing.T) {
	s := NewTrainingService(DefaultTrainingConfig())
	trainA, testA := s.split(100)
	trainB, testB := s.split(100)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
	assert.Len(t, testA, 20)
	assert.Len(t, trainA, 80)
}

func TestTrainRejectsBadInput(t *testing.T) {
	_, err := NewTrainingService(DefaultTrainingConfig()).Train(context.Background(), nil)
	assert.Error(t, err)

	cfg := DefaultTrainingConfig()
	cfg.TestFraction = 1
	_, err = NewTrainingService(cfg).Train(context.Background(), smallDataset(5))
	assert.Error(t, err)

	cfg = DefaultTrainingConfig()
	cfg.Kind = "xgboost"
	_, err = NewTrainingService(cfg).Train(context.Background(), smallDataset(5))
	assert.Error(t, err)

	records := smallDataset(5)
	records[3].Date = "03/04/2024"
	_, err = NewTrainingService(DefaultTrainingConfig()).Train(context.Background(), records)
	assert.Error(t, err)
}

func TestTrainHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTrainingService(DefaultTrainingConfig()).Train(ctx, smallDataset(5))
	assert.ErrorIs(t, err, context.Canceled)
}
