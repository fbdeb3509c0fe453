package handlers

import (
	"errors"
	"net/http"
	"sort"

	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes アップロードファイルの上限（10MB）
const maxUploadBytes = 10 << 20

// DatasetHandler 販売データファイルの検証ハンドラー
type DatasetHandler struct {
	catalog *dataset.Catalog
	schema  *features.Schema
}

// NewDatasetHandler 新しいデータセットハンドラーを作成
func NewDatasetHandler(catalog *dataset.Catalog, schema *features.Schema) *DatasetHandler {
	return &DatasetHandler{catalog: catalog, schema: schema}
}

// DatasetSummary アップロードされたデータセットの集計結果
type DatasetSummary struct {
	FileName        string              `json:"fileName"`
	Rows            int                 `json:"rows"`
	FirstDate       string              `json:"firstDate"`
	LastDate        string              `json:"lastDate"`
	TotalUnits      int                 `json:"totalUnits"`
	Products        int                 `json:"products"`
	UnknownProducts []string            `json:"unknownProducts"`
	UnseenValues    map[string][]string `json:"unseenValues"`
}

// ValidateDataset CSV/Excelファイルを解析し、カタログと現行スキーマに対する差分を返す
func (h *DatasetHandler) ValidateDataset(c *gin.Context) {
	if c.Request.ContentLength > maxUploadBytes {
		respondTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ファイルの取得に失敗しました。"})
		return
	}
	defer file.Close()

	if !dataset.Supported(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "サポートされていないファイル形式です。.xlsxまたは.csvをアップロードしてください。"})
		return
	}

	records, err := dataset.Read(file, fileHeader.Filename)
	if err != nil {
		var rowErr *dataset.RowError
		if errors.As(err, &rowErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "row": rowErr.Row})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	summary := DatasetSummary{
		FileName:        fileHeader.Filename,
		Rows:            len(records),
		FirstDate:       records[0].Date,
		LastDate:        records[0].Date,
		UnknownProducts: []string{},
		UnseenValues:    map[string][]string{},
	}

	products := make(map[string]struct{})
	unknown := make(map[string]struct{})
	for _, rec := range records {
		if rec.Date < summary.FirstDate {
			summary.FirstDate = rec.Date
		}
		if rec.Date > summary.LastDate {
			summary.LastDate = rec.Date
		}
		summary.TotalUnits += rec.UnitsSold
		products[rec.ProductName] = struct{}{}
		if _, ok := h.catalog.Get(rec.ProductName); !ok {
			unknown[rec.ProductName] = struct{}{}
		}
	}
	summary.Products = len(products)
	for name := range unknown {
		summary.UnknownProducts = append(summary.UnknownProducts, name)
	}
	sort.Strings(summary.UnknownProducts)

	// 現行モデルの学習時に存在しなかったカテゴリ値（予測時はゼロ寄与になる）
	uploaded := features.RegistryFromRecords(dataset.ToLabeled(records))
	for _, axis := range features.Axes() {
		known := h.schema.Registry().Domain(axis)
		for _, v := range uploaded.Domain(axis).Values() {
			if !known.Contains(v) {
				summary.UnseenValues[string(axis)] = append(summary.UnseenValues[string(axis)], v)
			}
		}
	}

	logging.Ctx(c.Request.Context()).Info().
		Str("file", fileHeader.Filename).
		Int("rows", summary.Rows).
		Str("first_date", summary.FirstDate).
		Str("last_date", summary.LastDate).
		Int("unknown_products", len(summary.UnknownProducts)).
		Msg("dataset validated")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

func respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "ファイルサイズが上限（10MB）を超えています。"})
}
