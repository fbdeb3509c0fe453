package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/logging"
	"shampoo-demand-api/pkg/models"
	"shampoo-demand-api/pkg/predictor"
)

// TrainingConfig 学習パイプラインの設定
type TrainingConfig struct {
	Kind         predictor.Kind
	TestFraction float64
	Seed         uint64
	Forest       predictor.ForestConfig
	RidgeAlpha   float64
}

// DefaultTrainingConfig ランダムフォレスト、80/20分割、シード42
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Kind:         predictor.KindRandomForest,
		TestFraction: 0.2,
		Seed:         42,
		Forest:       predictor.DefaultForestConfig(),
		RidgeAlpha:   predictor.DefaultRidgeAlpha,
	}
}

// TrainingService 過去の販売データからスキーマと回帰器を学習する
type TrainingService struct {
	cfg TrainingConfig
}

// NewTrainingService 新しい学習サービスを作成
func NewTrainingService(cfg TrainingConfig) *TrainingService {
	return &TrainingService{cfg: cfg}
}

func (s *TrainingService) newRegressor() (predictor.Regressor, error) {
	switch s.cfg.Kind {
	case predictor.KindRandomForest:
		return predictor.NewRandomForest(s.cfg.Forest), nil
	case predictor.KindRidge:
		return predictor.NewRidge(s.cfg.RidgeAlpha), nil
	default:
		return nil, fmt.Errorf("unknown regressor kind %q", s.cfg.Kind)
	}
}

// Train レコード → レジストリ → スキーマ凍結 → エンコード → 分割 → 学習 → 評価
func (s *TrainingService) Train(ctx context.Context, records []models.SalesRecord) (*artifact.Bundle, error) {
	if len(records) == 0 {
		return nil, errors.New("no training records")
	}
	if s.cfg.TestFraction < 0 || s.cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in [0, 1), got %v", s.cfg.TestFraction)
	}
	log := logging.Ctx(ctx)

	labeled := dataset.ToLabeled(records)
	schema := features.BuildSchema(features.RegistryFromRecords(labeled))
	encoder := features.NewEncoder(schema, nil)

	X := make([][]float64, len(labeled))
	y := make([]float64, len(labeled))
	for i, rec := range labeled {
		enc, err := encoder.EncodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		X[i] = enc.Vector.Values()
		y[i] = float64(records[i].UnitsSold)
	}

	trainIdx, testIdx := s.split(len(X))
	Xtr, ytr := subset(X, y, trainIdx)
	Xte, yte := subset(X, y, testIdx)

	reg, err := s.newRegressor()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().
		Str("kind", string(reg.Kind())).
		Int("features", schema.Len()).
		Int("train_rows", len(Xtr)).
		Int("test_rows", len(Xte)).
		Msg("fitting regressor")

	start := time.Now()
	if err := reg.Fit(Xtr, ytr); err != nil {
		return nil, fmt.Errorf("fit %s: %w", reg.Kind(), err)
	}

	metrics := artifact.Metrics{
		Train: predictor.Evaluate(reg, Xtr, ytr),
		Test:  predictor.Evaluate(reg, Xte, yte),
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Float64("train_r2", metrics.Train.R2).
		Float64("test_r2", metrics.Test.R2).
		Float64("test_mae", metrics.Test.MAE).
		Msg("regressor fitted")

	return artifact.NewBundle(schema, reg, len(records), metrics), nil
}

// TrainAndSave 学習して成果物をdirに書き出す
func (s *TrainingService) TrainAndSave(ctx context.Context, records []models.SalesRecord, dir string) (*artifact.Bundle, error) {
	b, err := s.Train(ctx, records)
	if err != nil {
		return nil, err
	}
	modelPath, schemaPath, err := artifact.Save(dir, b)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().
		Str("version", b.Version).
		Str("model", modelPath).
		Str("schema", schemaPath).
		Msg("artifacts written")
	return b, nil
}

// split shuffles row indices with the configured seed and holds out the test fraction.
func (s *TrainingService) split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewPCG(s.cfg.Seed, 0))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(math.Round(float64(n) * s.cfg.TestFraction))
	if nTest >= n {
		nTest = n - 1
	}
	return idx[nTest:], idx[:nTest]
}

func subset(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
