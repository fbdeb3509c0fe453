package handlers

import (
	"net/http"

	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/logging"
	"shampoo-demand-api/pkg/models"
	"shampoo-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// PredictionHandler 需要予測ハンドラー
type PredictionHandler struct {
	service *services.PredictionService
	catalog *dataset.Catalog
}

// NewPredictionHandler 新しい需要予測ハンドラーを作成
func NewPredictionHandler(service *services.PredictionService, catalog *dataset.Catalog) *PredictionHandler {
	return &PredictionHandler{service: service, catalog: catalog}
}

// writeError 予測エラーをHTTPステータスとエラーコードに変換
func writeError(c *gin.Context, err error) {
	code := services.ErrorCode(err)
	status := http.StatusBadRequest
	if !services.IsClientError(err) {
		status = http.StatusInternalServerError
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("prediction failed")
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

// Predict 1シナリオの販売数を予測
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの解析に失敗しました: " + err.Error(),
			"code":    services.CodeInvalidRequest,
		})
		return
	}

	resp, err := h.service.Predict(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PredictBatch 複数シナリオを一括予測。項目ごとのエラーはバッチ全体を失敗させない
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	var req models.BatchPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの解析に失敗しました: " + err.Error(),
			"code":    services.CodeInvalidRequest,
		})
		return
	}

	out := h.service.PredictBatch(c.Request.Context(), req.Requests)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}

// GetModel 読み込まれたモデルのメタデータ
func (h *PredictionHandler) GetModel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.service.Info(),
	})
}

// GetSchema 特徴量スキーマ（列順とカテゴリ値）
func (h *PredictionHandler) GetSchema(c *gin.Context) {
	schema := h.service.Schema()
	domains := make(map[string][]string, len(features.Axes()))
	for axis, values := range schema.Registry().Snapshot() {
		domains[string(axis)] = values
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"fingerprint": schema.Fingerprint(),
			"columns":     schema.Columns(),
			"domains":     domains,
		},
	})
}

// GetProducts 予測可能な商品カタログ
func (h *PredictionHandler) GetProducts(c *gin.Context) {
	products := h.catalog.Products()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"products": products,
			"names":    h.catalog.Names(),
			"count":    len(products),
		},
	})
}

// Root サービスの状態と主要エンドポイント
func (h *PredictionHandler) Root(c *gin.Context) {
	info := h.service.Info()
	c.JSON(http.StatusOK, gin.H{
		"service":       "shampoo-demand-api",
		"status":        "ok",
		"model_version": info.Version,
		"endpoints": []string{
			"POST /predict",
			"POST /api/v1/predict",
			"POST /api/v1/predict/batch",
			"GET /api/v1/model",
			"GET /api/v1/schema",
			"GET /api/v1/products",
			"GET /health",
			"GET /metrics",
		},
	})
}
