package server

import (
	config "shampoo-demand-api/configs"
	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/metrics"
	"shampoo-demand-api/pkg/ratelimit"
	"shampoo-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// App 起動済みの依存関係一式
type App struct {
	Router  *gin.Engine
	Bundle  *artifact.Bundle
	limiter *ratelimit.KeyedRateLimiter
}

// New はモデル成果物とカタログを読み込み、ルーターを組み立てます。
// 成果物が欠落・破損している場合は *artifact.ArtifactLoadError を返します。
func New(cfg *config.Config) (*App, error) {
	bundle, err := artifact.Load(cfg.ModelPath(), cfg.SchemaPath())
	if err != nil {
		return nil, err
	}

	catalog := dataset.DefaultCatalog()
	if cfg.CatalogFile != "" {
		catalog, err = dataset.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
	}

	var limiter *ratelimit.KeyedRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	prediction := services.NewPredictionServiceFromBundle(bundle, catalog.Lookup())
	metrics.ModelInfo.WithLabelValues(bundle.Version, string(bundle.Regressor.Kind())).Set(1)

	router := NewRouter(cfg, Deps{
		Prediction: prediction,
		Monitoring: services.NewMonitoringService(cfg.MonitoringCapacity, cfg.MonitoringTimezone),
		Catalog:    catalog,
		Limiter:    limiter,
	})
	return &App{Router: router, Bundle: bundle, limiter: limiter}, nil
}

// Close stops background work started by New.
func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}
