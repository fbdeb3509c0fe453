package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMonitoringDashboardAggregates(t *testing.T) {
	now := time.Date(2024, 10, 2, 12, 30, 0, 0, time.UTC)
	s := NewMonitoringService(100, "Asia/Kolkata")
	s.now = fixedClock(now)

	s.LogRequest(LogEntry{Timestamp: now.Add(-10 * time.Minute), Path: "/api/v1/predict", Method: "POST", StatusCode: 200, ResponseTime: 4 * time.Millisecond})
	s.LogRequest(LogEntry{Timestamp: now.Add(-20 * time.Minute), Path: "/api/v1/predict", Method: "POST", StatusCode: 400, ResponseTime: 2 * time.Millisecond})
	s.LogRequest(LogEntry{Timestamp: now.Add(-2 * time.Hour), Path: "/predict", Method: "POST", StatusCode: 500, ResponseTime: 10 * time.Millisecond})
	s.LogRequest(LogEntry{Timestamp: now.Add(-30 * time.Hour), Path: "/health", Method: "GET", StatusCode: 200})

	data := s.GetDashboardData(24)

	require.Len(t, data.RequestsOverTime, 24)
	total := 0
	for _, b := range data.RequestsOverTime {
		total += b.Requests
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, data.RequestsOverTime[23].Requests)

	assert.Equal(t, map[string]int{"/api/v1/predict": 2, "/predict": 1}, data.Endpoints)
	assert.Equal(t, PredictionSummary{Total: 3, Served: 1, Rejected: 1, Failed: 1}, data.Predictions)
	require.Len(t, data.RecentErrors, 1)
	assert.Equal(t, "/predict", data.RecentErrors[0].Path)

	require.Len(t, data.AvgResponseTimes, 2)
	assert.Equal(t, EndpointLatency{Endpoint: "/api/v1/predict", ResponseTime: 3}, data.AvgResponseTimes[0])

	assert.Equal(t, []StatusCount{
		{Name: "2xx Success", Value: 1},
		{Name: "4xx Client Error", Value: 1},
		{Name: "5xx Server Error", Value: 1},
	}, data.StatusCodes)
}

func TestMonitoringRingBufferDropsOldest(t *testing.T) {
	now := time.Now()
	s := NewMonitoringService(3, "UTC")
	for i, path := range []string{"/a", "/b", "/c", "/d"} {
		s.LogRequest(LogEntry{Timestamp: now.Add(time.Duration(i) * time.Second), Path: path, StatusCode: 200})
	}

	s.mu.RLock()
	logs := s.snapshot()
	s.mu.RUnlock()

	require.Len(t, logs, 3)
	assert.Equal(t, "/b", logs[0].Path)
	assert.Equal(t, "/d", logs[2].Path)
}

func TestMonitoringMiddlewareSkipsAdminPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewMonitoringService(10, "UTC")

	r := gin.New()
	r.Use(s.LoggingMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/monitoring/logs", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/api/v1/monitoring/logs", "/metrics"} {
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	data := s.GetDashboardData(1)
	assert.Equal(t, map[string]int{"/health": 1}, data.Endpoints)
}
