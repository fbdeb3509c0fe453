package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("test") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 2, rl.Len())
}

func TestKeyedRateLimiter_EvictsIdleKeys(t *testing.T) {
	rl := newLimiter(1, 1, time.Minute, false)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(2 * time.Minute)
	rl.Allow("fresh")

	rl.evictIdle()
	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("old"), "evicted key starts with a full bucket")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := New(0.001, 2)
	defer rl.Stop()

	r := gin.New()
	r.Use(Middleware(rl))
	r.GET("/predict", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/predict", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
