package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Len(t, GenerateRequestID(), 36)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	var seen string
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	// ヘッダーが無い場合は生成される
	req, _ = http.NewRequest("GET", "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
}
