package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "shampoo-demand-api/configs"
	"shampoo-demand-api/internal/server"
	"shampoo-demand-api/pkg/artifact"
	"shampoo-demand-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	envErr := godotenv.Load()

	// 設定の読み込み
	cfg := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Debug().Err(envErr).Msg(".env file not loaded")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := server.New(cfg)
	if err != nil {
		var loadErr *artifact.ArtifactLoadError
		if errors.As(err, &loadErr) {
			logging.Fatal().Str("artifact", loadErr.Artifact).Str("path", loadErr.Path).Err(loadErr.Err).Msg("cannot load model artifacts")
		}
		logging.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	logging.Info().
		Str("version", a.Bundle.Version).
		Str("kind", string(a.Bundle.Regressor.Kind())).
		Int("features", a.Bundle.Schema.Len()).
		Str("schema_fingerprint", a.Bundle.Schema.Fingerprint()).
		Msg("model loaded")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("environment", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	logging.Info().Msg("server stopped")
}
