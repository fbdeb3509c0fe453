// Package server assembles the HTTP router for the demand prediction API.
package server

import (
	"net/http"
	"time"

	config "shampoo-demand-api/configs"
	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/handlers"
	"shampoo-demand-api/pkg/logging"
	"shampoo-demand-api/pkg/ratelimit"
	"shampoo-demand-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps ルーターが必要とするサービス群
type Deps struct {
	Prediction *services.PredictionService
	Monitoring *services.MonitoringService
	Catalog    *dataset.Catalog
	Limiter    *ratelimit.KeyedRateLimiter // nilならレート制限なし
}

// authMiddleware X-API-KEYヘッダーを検証。キー未設定なら認証なし
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cc.AllowOrigins = cfg.AllowedOrigins
	} else {
		cc.AllowAllOrigins = true
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "X-API-KEY", logging.RequestIDHeader)
	cc.ExposeHeaders = []string{logging.RequestIDHeader}
	cc.MaxAge = 12 * time.Hour
	return cc
}

// NewRouter 全エンドポイントとミドルウェアを登録したGinエンジンを返す
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()

	predictionHandler := handlers.NewPredictionHandler(deps.Prediction, deps.Catalog)
	datasetHandler := handlers.NewDatasetHandler(deps.Catalog, deps.Prediction.Schema())
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitoring)

	// ミドルウェアの登録
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.New(corsConfig(cfg)))

	predictGuards := []gin.HandlerFunc{adminHandler.MaintenanceGuard()}
	if deps.Limiter != nil {
		predictGuards = append(predictGuards, ratelimit.Middleware(deps.Limiter))
	}

	r.GET("/", predictionHandler.Root)
	r.GET("/health", adminHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 互換エンドポイント
	legacy := append([]gin.HandlerFunc{authMiddleware(cfg.APIKey)}, predictGuards...)
	r.POST("/predict", append(legacy, predictionHandler.Predict)...)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		predict := v1.Group("/predict")
		predict.Use(predictGuards...)
		{
			predict.POST("", predictionHandler.Predict)
			predict.POST("/batch", predictionHandler.PredictBatch)
		}

		v1.GET("/model", predictionHandler.GetModel)
		v1.GET("/schema", predictionHandler.GetSchema)
		v1.GET("/products", predictionHandler.GetProducts)
		v1.POST("/datasets/validate", datasetHandler.ValidateDataset)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	return r
}
