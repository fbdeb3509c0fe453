package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultMonitoringCapacity 保持するリクエストログの上限
const DefaultMonitoringCapacity = 10000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
// ログは上限付きのリングバッファに保持され、古いものから破棄されます。
type MonitoringService struct {
	mu       sync.RWMutex
	logs     []LogEntry
	next     int
	full     bool
	location *time.Location
	now      func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。tzはダッシュボードの時間バケットに使うタイムゾーン
func NewMonitoringService(capacity int, tz string) *MonitoringService {
	if capacity <= 0 {
		capacity = DefaultMonitoringCapacity
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return &MonitoringService{
		logs:     make([]LogEntry, capacity),
		location: loc,
		now:      time.Now,
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[s.next] = entry
	s.next = (s.next + 1) % len(s.logs)
	if s.next == 0 {
		s.full = true
	}
}

// snapshot returns the retained entries oldest first. Caller holds the read lock.
func (s *MonitoringService) snapshot() []LogEntry {
	if !s.full {
		return append([]LogEntry(nil), s.logs[:s.next]...)
	}
	out := make([]LogEntry, 0, len(s.logs))
	out = append(out, s.logs[s.next:]...)
	return append(out, s.logs[:s.next]...)
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		// 管理・モニタリング・メトリクスは集計対象外
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") || path == "/metrics" {
			return
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// HourlyCount 1時間バケットのリクエスト数
type HourlyCount struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusCount ステータスクラスごとの件数
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointLatency エンドポイントごとの平均応答時間（ミリ秒）
type EndpointLatency struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// PredictionSummary 予測エンドポイントの成否
type PredictionSummary struct {
	Total    int `json:"total"`
	Served   int `json:"served"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyCount     `json:"requestsOverTime"`
	Endpoints        map[string]int    `json:"endpoints"`
	StatusCodes      []StatusCount     `json:"statusCodes"`
	AvgResponseTimes []EndpointLatency `json:"avgResponseTimes"`
	Predictions      PredictionSummary `json:"predictions"`
	RecentErrors     []LogEntry        `json:"recentErrors"`
}

func isPredictionPath(path string) bool {
	return path == "/predict" || strings.HasPrefix(path, "/api/v1/predict")
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours <= 0 {
		periodHours = 24
	}
	s.mu.RLock()
	logs := s.snapshot()
	s.mu.RUnlock()

	now := s.now().In(s.location)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]LogEntry, 0, len(logs))
	for _, log := range logs {
		if log.Timestamp.After(since) {
			filtered = append(filtered, log)
		}
	}

	// 過去から現在へ向かう順序で時間バケットを作る
	overTime := make([]HourlyCount, periodHours)
	bucketIndex := make(map[int64]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		overTime[i] = HourlyCount{Time: t.Format("15:00")}
		bucketIndex[t.Unix()] = i
	}

	endpoints := make(map[string]int)
	statusCounts := map[string]int{"2xx Success": 0, "4xx Client Error": 0, "5xx Server Error": 0}
	latencySum := make(map[string]time.Duration)
	var predictions PredictionSummary

	for _, log := range filtered {
		if i, ok := bucketIndex[log.Timestamp.In(s.location).Truncate(time.Hour).Unix()]; ok {
			overTime[i].Requests++
		}
		endpoints[log.Path]++
		latencySum[log.Path] += log.ResponseTime

		switch {
		case log.StatusCode >= 200 && log.StatusCode < 300:
			statusCounts["2xx Success"]++
		case log.StatusCode >= 400 && log.StatusCode < 500:
			statusCounts["4xx Client Error"]++
		case log.StatusCode >= 500:
			statusCounts["5xx Server Error"]++
		}

		if isPredictionPath(log.Path) {
			predictions.Total++
			switch {
			case log.StatusCode < 300:
				predictions.Served++
			case log.StatusCode < 500:
				predictions.Rejected++
			default:
				predictions.Failed++
			}
		}
	}

	statusCodes := make([]StatusCount, 0, len(statusCounts))
	for name, value := range statusCounts {
		statusCodes = append(statusCodes, StatusCount{Name: name, Value: value})
	}
	sort.Slice(statusCodes, func(i, j int) bool { return statusCodes[i].Name < statusCodes[j].Name })

	latencies := make([]EndpointLatency, 0, len(latencySum))
	for path, total := range latencySum {
		latencies = append(latencies, EndpointLatency{
			Endpoint:     path,
			ResponseTime: total.Milliseconds() / int64(endpoints[path]),
		})
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i].Endpoint < latencies[j].Endpoint })

	// 新しい順に最大10件
	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: overTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: latencies,
		Predictions:      predictions,
		RecentErrors:     recentErrors,
	}
}
