package services

import (
	"context"
	"math"
	"time"

	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/logging"
	"shampoo-demand-api/pkg/metrics"
	"shampoo-demand-api/pkg/models"
)

// Stage 1リクエスト内の処理段階
type Stage int

const (
	StageIdle Stage = iota
	StageEncoding
	StagePredicting
)

func (s Stage) String() string {
	switch s {
	case StageEncoding:
		return "encoding"
	case StagePredicting:
		return "predicting"
	default:
		return "idle"
	}
}

// StageObserver is notified on every stage transition of a request.
type StageObserver func(ctx context.Context, from, to Stage)

// Predictor 学習済み回帰器のうちサービングに必要な部分
type Predictor interface {
	Predict(x []float64) float64
}

// PredictionService 需要予測サービス。スキーマ・回帰器・ルックアップは起動時に読み込まれ以後読み取り専用
type PredictionService struct {
	encoder   *features.Encoder
	predictor Predictor
	info      models.ModelInfo
	observer  StageObserver
}

// PredictionOption configures a PredictionService.
type PredictionOption func(*PredictionService)

// WithStageObserver registers a stage transition observer.
func WithStageObserver(o StageObserver) PredictionOption {
	return func(s *PredictionService) { s.observer = o }
}

// WithModelInfo sets the metadata reported by Info.
func WithModelInfo(info models.ModelInfo) PredictionOption {
	return func(s *PredictionService) { s.info = info }
}

// NewPredictionService 新しい需要予測サービスを作成
func NewPredictionService(schema *features.Schema, p Predictor, lookup features.ProductLookup, opts ...PredictionOption) *PredictionService {
	s := &PredictionService{
		encoder:   features.NewEncoder(schema, lookup),
		predictor: p,
		info:      models.ModelInfo{NumFeatures: schema.Len(), SchemaVersion: schema.Fingerprint()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPredictionServiceFromBundle wires a service around loaded artifacts.
func NewPredictionServiceFromBundle(b *artifact.Bundle, lookup features.ProductLookup, opts ...PredictionOption) *PredictionService {
	info := models.ModelInfo{
		Version:       b.Version,
		Kind:          string(b.Regressor.Kind()),
		TrainedAt:     b.TrainedAt,
		NumFeatures:   b.Schema.Len(),
		TrainingRows:  b.TrainingRows,
		TrainR2:       b.Metrics.Train.R2,
		TestR2:        b.Metrics.Test.R2,
		TestMAE:       b.Metrics.Test.MAE,
		SchemaVersion: b.Schema.Fingerprint(),
	}
	return NewPredictionService(b.Schema, b.Regressor, lookup, append([]PredictionOption{WithModelInfo(info)}, opts...)...)
}

// Info returns the loaded model metadata.
func (s *PredictionService) Info() models.ModelInfo { return s.info }

// Schema returns the frozen feature schema.
func (s *PredictionService) Schema() *features.Schema { return s.encoder.Schema() }

func (s *PredictionService) transition(ctx context.Context, from, to Stage) {
	if s.observer != nil {
		s.observer(ctx, from, to)
	}
}

// Predict 検証 → エンコード → 予測。エンコードに失敗した場合は予測段階に入らない
func (s *PredictionService) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	if err := validateRequest(req); err != nil {
		metrics.PredictionsTotal.WithLabelValues(ErrorCode(err)).Inc()
		return nil, err
	}

	s.transition(ctx, StageIdle, StageEncoding)
	start := time.Now()
	enc, err := s.encoder.Encode(features.Request{
		Date:              req.Date,
		ProductName:       req.ProductName,
		PriceInr:          req.PriceInr,
		MarketingSpendInr: req.MarketingSpendInr,
		EventType:         req.EventType,
	})
	metrics.StageDuration.WithLabelValues(StageEncoding.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.transition(ctx, StageEncoding, StageIdle)
		code := ErrorCode(err)
		metrics.PredictionsTotal.WithLabelValues(code).Inc()
		logging.Ctx(ctx).Warn().Str("code", code).Str("product", req.ProductName).Err(err).Msg("encoding rejected")
		return nil, err
	}
	for _, axis := range enc.DegradedAxes {
		metrics.DegradedAxesTotal.WithLabelValues(string(axis)).Inc()
	}
	if len(enc.DegradedAxes) > 0 {
		logging.Ctx(ctx).Debug().Interface("axes", enc.DegradedAxes).Msg("unknown categorical values encoded as zero")
	}

	s.transition(ctx, StageEncoding, StagePredicting)
	start = time.Now()
	raw := s.predictor.Predict(enc.Vector.Values())
	metrics.StageDuration.WithLabelValues(StagePredicting.String()).Observe(time.Since(start).Seconds())
	units := ClampUnits(raw)
	s.transition(ctx, StagePredicting, StageIdle)

	metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	metrics.PredictedUnits.Observe(float64(units))

	return &models.PredictionResponse{
		Product:            req.ProductName,
		PredictedUnitsSold: units,
	}, nil
}

// PredictBatch 各項目を独立に予測する。1件の失敗はバッチ全体を失敗させない
func (s *PredictionService) PredictBatch(ctx context.Context, reqs []models.PredictionRequest) models.BatchPredictionResponse {
	out := models.BatchPredictionResponse{Items: make([]models.BatchPredictionItem, len(reqs))}
	for i, req := range reqs {
		item := models.BatchPredictionItem{Index: i}
		resp, err := s.Predict(ctx, req)
		if err != nil {
			item.Error = err.Error()
			item.Code = ErrorCode(err)
			out.Failed++
		} else {
			item.Result = resp
			out.Succeeded++
		}
		out.Items[i] = item
	}
	return out
}

func validateRequest(req models.PredictionRequest) error {
	if math.IsNaN(req.PriceInr) || math.IsInf(req.PriceInr, 0) || req.PriceInr < 0 {
		return &InvalidRequestError{Field: "priceInr", Reason: "must be a non-negative number"}
	}
	if math.IsNaN(req.MarketingSpendInr) || math.IsInf(req.MarketingSpendInr, 0) || req.MarketingSpendInr < 0 {
		return &InvalidRequestError{Field: "marketingSpendInr", Reason: "must be a non-negative number"}
	}
	return nil
}

// ClampUnits 回帰器の生の出力を非負の整数に丸める（小数部は切り捨て）
func ClampUnits(raw float64) int {
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	if raw >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(raw)
}
