package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/dnzakizamani/simple-login/pkg/metrics"
	pkgredis "github.com/dnzakizamani/simple-login/pkg/redis"
	"github.com/gin-gonic/gin"
)

const loginRateWindow = time.Minute

// LoginRateLimit 登录接口限流中间件，按客户端IP固定窗口计数
// Redis可用时计数器放Redis（多实例共享），否则退化为进程内计数
func LoginRateLimit(limit int) gin.HandlerFunc {
	local := newLocalCounter()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		count, err := incrAttempts(c.Request.Context(), local, ip)
		if err != nil {
			// 限流器故障不应阻断登录，记录后放行
			logger.Warnf("Login rate limiter unavailable: %v", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			logger.Warnf("Login rate limit exceeded: client=%s count=%d", ip, count)
			c.JSON(http.StatusTooManyRequests, model.Error(429, "登录尝试过于频繁，请稍后再试"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func incrAttempts(ctx context.Context, local *localCounter, ip string) (int64, error) {
	if pkgredis.IsEnabled() {
		key := fmt.Sprintf("login:attempts:%s", ip)
		count, err := pkgredis.Client.Incr(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		// 窗口首次计数时设置过期
		if count == 1 {
			pkgredis.Client.Expire(ctx, key, loginRateWindow)
		}
		return count, nil
	}
	return local.incr(ip), nil
}

// localCounter 进程内固定窗口计数器，Redis不可用时的降级实现
type localCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	resetAt time.Time
}

func newLocalCounter() *localCounter {
	return &localCounter{
		counts:  make(map[string]int64),
		resetAt: time.Now().Add(loginRateWindow),
	}
}

func (l *localCounter) incr(key string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.After(l.resetAt) {
		l.counts = make(map[string]int64)
		l.resetAt = now.Add(loginRateWindow)
	}

	l.counts[key]++
	return l.counts[key]
}
