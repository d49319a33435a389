package middleware

import (
	"time"

	"resource-share/src/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware ルート単位でリクエスト数とレイテンシを記録
func MetricsMiddleware(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
