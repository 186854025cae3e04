package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware 自定义错误恢复中间件，打印详细的错误信息
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}

		userID := ""
		if uid, exists := c.Get("user_id"); exists {
			userID = fmt.Sprintf("%v", uid)
		}

		fullURL := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			fullURL = fmt.Sprintf("%s?%s", fullURL, q)
		}

		logger.Errorf(
			"Panic recovered: %v\n"+
				"  Request: %s %s\n"+
				"  Client IP: %s\n"+
				"  User-Agent: %s\n"+
				"  User ID: %s\n"+
				"  Stack Trace:\n%s",
			err,
			c.Request.Method,
			fullURL,
			c.ClientIP(),
			c.Request.UserAgent(),
			userID,
			string(debug.Stack()),
		)

		// 内部细节只进日志
		c.JSON(http.StatusInternalServerError, model.Error(500, "服务器内部错误"))
		c.Abort()
	})
}
