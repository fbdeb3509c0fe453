package models

import "time"

// SalesRecord represents a single daily sales row of the historical dataset.
// 列名は学習CSVのヘッダーと対応する
type SalesRecord struct {
	Date              string  `json:"date" validate:"required,datetime=2006-01-02"`
	ProductName       string  `json:"product_name" validate:"required"`
	Brand             string  `json:"brand" validate:"required"`
	CategoryType      string  `json:"category_type" validate:"required"`
	PriceInr          float64 `json:"price_inr" validate:"gte=0"`
	MarketingSpendInr float64 `json:"marketing_spend_inr" validate:"gte=0"`
	EventType         string  `json:"event_type" validate:"required"`
	UnitsSold         int     `json:"units_sold" validate:"gte=0"`
}

// Product 商品カタログの1エントリー
type Product struct {
	Name       string  `json:"name"`
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`
	BasePrice  float64 `json:"base_price"`
	BaseDemand float64 `json:"base_demand"`
}

// PredictionRequest 需要予測リクエスト（未来のシナリオ）
type PredictionRequest struct {
	Date              string  `json:"date" binding:"required"` // YYYY-MM-DD
	ProductName       string  `json:"productName" binding:"required"`
	PriceInr          float64 `json:"priceInr" binding:"gte=0"`
	MarketingSpendInr float64 `json:"marketingSpendInr" binding:"gte=0"`
	EventType         string  `json:"eventType"`
}

// PredictionResponse 需要予測結果。販売数は非負の整数
type PredictionResponse struct {
	Product            string `json:"product"`
	PredictedUnitsSold int    `json:"predictedUnitsSold"`
}

// BatchPredictionRequest 複数シナリオの一括予測リクエスト
// 各項目の検証はサービス側で項目ごとに行う
type BatchPredictionRequest struct {
	Requests []PredictionRequest `json:"requests" binding:"required,min=1,max=500"`
}

// BatchPredictionItem 一括予測の1件分。失敗した項目はErrorを持つ
type BatchPredictionItem struct {
	Index  int                 `json:"index"`
	Result *PredictionResponse `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Code   string              `json:"code,omitempty"`
}

// BatchPredictionResponse 一括予測結果
type BatchPredictionResponse struct {
	Items     []BatchPredictionItem `json:"items"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
}

// ModelInfo 読み込まれたモデル成果物のメタデータ
type ModelInfo struct {
	Version       string    `json:"version"`
	Kind          string    `json:"kind"`
	TrainedAt     time.Time `json:"trained_at"`
	NumFeatures   int       `json:"num_features"`
	TrainingRows  int       `json:"training_rows"`
	TrainR2       float64   `json:"train_r2"`
	TestR2        float64   `json:"test_r2"`
	TestMAE       float64   `json:"test_mae"`
	SchemaVersion string    `json:"schema_fingerprint"`
}
