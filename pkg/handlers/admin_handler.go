package handlers

import (
	"crypto/subtle"
	"net/http"
	"sync/atomic"

	config "shampoo-demand-api/configs"
	"shampoo-demand-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// AdminHandler は管理者向け操作のハンドラです。
// メンテナンス状態はハンドラごとに保持され、HealthCheckとMaintenanceGuardが参照します。
type AdminHandler struct {
	AdminUsername string
	AdminPassword string

	maintenance atomic.Bool
}

// NewAdminHandler は新しいAdminHandlerを生成します。
func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}
}

// AdminCredentials は管理者認証のためのリクエストボディです。
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) authorize(c *gin.Context) bool {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return false
	}
	// 管理者が未設定の場合は常に拒否
	if h.AdminUsername == "" || h.AdminPassword == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(h.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(h.AdminPassword)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return false
	}
	return true
}

// StartMaintenance はメンテナンスモードを開始します。
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Store(true)
	logging.Ctx(c.Request.Context()).Warn().Msg("maintenance mode started")
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance はメンテナンスモードを停止します。
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Store(false)
	logging.Ctx(c.Request.Context()).Info().Msg("maintenance mode stopped")
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}

// InMaintenance reports the current maintenance state.
func (h *AdminHandler) InMaintenance() bool { return h.maintenance.Load() }

// GetHealthStatus は現在のサーバーの状態を返します。
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isMaintenanceMode": h.maintenance.Load()})
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	if h.maintenance.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MaintenanceGuard メンテナンス中は予測リクエストを503で拒否する
func (h *AdminHandler) MaintenanceGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.maintenance.Load() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "Server is in maintenance mode",
				"code":    "maintenance",
			})
			return
		}
		c.Next()
	}
}
