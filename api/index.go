package handler

import (
	"net/http"
	"sync"

	config "shampoo-demand-api/configs"
	"shampoo-demand-api/internal/server"
	"shampoo-demand-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

var (
	app     *server.App
	initErr error
	once    sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// .envファイルはデプロイ先の環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
func setupApp() (*server.App, error) {
	once.Do(func() {
		cfg := config.LoadConfig()
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: "json"})
		gin.SetMode(gin.ReleaseMode)

		app, initErr = server.New(cfg)
		if initErr != nil {
			logging.Error().Err(initErr).Msg("serverless init failed")
			return
		}
		logging.Info().Str("version", app.Bundle.Version).Msg("serverless app initialized")
	})
	return app, initErr
}

// Handler はサーバーレス関数のエントリーポイントです。
// 成果物を読み込めない場合はすべてのリクエストに503を返します。
func Handler(w http.ResponseWriter, r *http.Request) {
	a, err := setupApp()
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"error":"model artifacts unavailable","code":"artifact_unavailable"}`))
		return
	}
	a.Router.ServeHTTP(w, r)
}
