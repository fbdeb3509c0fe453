package handlers

import (
	"net/http"

	"shampoo-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// periodHours 期間クエリ（1h / 24h / 7d）を時間数に変換。不明な値は24時間
func periodHours(period string) int {
	switch period {
	case "1h":
		return 1
	case "7d":
		return 24 * 7
	default:
		return 24
	}
}

// GetLogs は集計されたログデータを返します。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours := periodHours(c.DefaultQuery("period", "24h"))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.Service.GetDashboardData(hours),
	})
}
