package logging

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader リクエストIDのヘッダー名
const RequestIDHeader = "X-Request-ID"

// RequestLogger はリクエストIDを付与し、完了時にアクセスログを出力するGinミドルウェアです。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = GenerateRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		l := Logger()
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
