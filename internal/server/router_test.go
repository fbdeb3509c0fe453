package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "shampoo-demand-api/configs"
	"shampoo-demand-api/pkg/dataset"
	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/ratelimit"
	"shampoo-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type constPredictor float64

func (p constPredictor) Predict([]float64) float64 { return float64(p) }

const coolMenthol = `{"date":"2024-10-02","productName":"H&S Cool Menthol (650ml)","priceInr":467,"marketingSpendInr":6000,"eventType":"National Sale"}`

func newTestRouter(t *testing.T, cfg *config.Config, limiter *ratelimit.KeyedRateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := dataset.DefaultGeneratorConfig()
	gen.Days = 7
	catalog := dataset.DefaultCatalog()
	schema := features.BuildSchema(features.RegistryFromRecords(dataset.ToLabeled(dataset.Generate(catalog, gen))))

	return NewRouter(cfg, Deps{
		Prediction: services.NewPredictionService(schema, constPredictor(120.4), catalog.Lookup()),
		Monitoring: services.NewMonitoringService(100, "Asia/Kolkata"),
		Catalog:    catalog,
		Limiter:    limiter,
	})
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPredictRoutes(t *testing.T) {
	r := newTestRouter(t, &config.Config{}, nil)

	for _, path := range []string{"/predict", "/api/v1/predict"} {
		w := do(r, "POST", path, coolMenthol, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"product":"H&S Cool Menthol (650ml)","predictedUnitsSold":120}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := do(r, "POST", "/predict", `{"date":"2024-10-02","productName":"Nope"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unknown_product"`)
}

func TestAPIKeyRequired(t *testing.T) {
	r := newTestRouter(t, &config.Config{APIKey: "k"}, nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, "POST", "/predict", coolMenthol, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/api/v1/model", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "POST", "/api/v1/predict", coolMenthol, map[string]string{"X-API-KEY": "k"}).Code)

	// ヘルスチェックとメトリクスは認証不要
	assert.Equal(t, http.StatusOK, do(r, "GET", "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "GET", "/metrics", "", nil).Code)
}

func TestMaintenanceBlocksPredictions(t *testing.T) {
	r := newTestRouter(t, &config.Config{AdminUsername: "admin", AdminPassword: "pw"}, nil)
	creds := `{"username":"admin","password":"pw"}`

	assert.Equal(t, http.StatusOK, do(r, "POST", "/api/v1/admin/maintenance/start", creds, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, "GET", "/health", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, "POST", "/predict", coolMenthol, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, "POST", "/api/v1/predict/batch", `{"requests":[`+coolMenthol+`]}`, nil).Code)
	// 参照系は引き続き利用可能
	assert.Equal(t, http.StatusOK, do(r, "GET", "/api/v1/schema", "", nil).Code)

	assert.Equal(t, http.StatusOK, do(r, "POST", "/api/v1/admin/maintenance/stop", creds, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "POST", "/predict", coolMenthol, nil).Code)
}

func TestRateLimitedPredictions(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	defer limiter.Stop()
	r := newTestRouter(t, &config.Config{}, limiter)

	assert.Equal(t, http.StatusOK, do(r, "POST", "/api/v1/predict", coolMenthol, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "POST", "/api/v1/predict", coolMenthol, nil).Code)
	// 予測以外は制限されない
	assert.Equal(t, http.StatusOK, do(r, "GET", "/api/v1/products", "", nil).Code)
}

func TestMetricsExposePredictionCounters(t *testing.T) {
	r := newTestRouter(t, &config.Config{}, nil)
	do(r, "POST", "/predict", coolMenthol, nil)

	w := do(r, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shampoo_predictions_total")
	assert.Contains(t, w.Body.String(), "shampoo_prediction_stage_seconds")
}

func TestMonitoringSeesPredictions(t *testing.T) {
	r := newTestRouter(t, &config.Config{}, nil)
	do(r, "POST", "/predict", coolMenthol, nil)
	do(r, "POST", "/predict", `{"date":"bad","productName":"x"}`, nil)

	w := do(r, "GET", "/api/v1/monitoring/logs?period=1h", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"predictions":{"total":2,"served":1,"rejected":1,"failed":0}`)
}
