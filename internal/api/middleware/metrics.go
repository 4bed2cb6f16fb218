package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"signage/backend/pkg/metrics"
)

// Metrics Prometheus 请求指标中间件
// 以路由模板（如 /api/v1/locations/:id）作为 path 标签，避免高基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
