package middleware

import (
	"strconv"
	"time"

	"github.com/dnzakizamani/simple-login/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics 请求指标中间件，记录请求数和处理时长
// endpoint 使用路由模板（如 /api/users/:id）而不是实际路径，避免标签基数爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.APIRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}
