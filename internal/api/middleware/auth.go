package middleware

import (
	"net/http"
	"strings"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	"github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
// Token优先从Cookie读取（浏览器端），兼容 Authorization: Bearer 头（API调用）。
// 缺失、无效、过期一律返回401，不区分具体原因
func AuthMiddleware(authService *auth.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, model.Error(401, "未登录或会话已过期"))
			c.Abort()
			return
		}

		identity, err := authService.ValidateToken(tokenString)
		if err != nil {
			metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, model.Error(401, "未登录或会话已过期"))
			c.Abort()
			return
		}

		// 身份信息写入上下文，供后续中间件和处理器使用
		c.Set("user_id", identity.ID)
		c.Set("username", identity.Username)
		c.Set("email", identity.Email)
		c.Next()
	}
}

// RequireRole 角色检查中间件，必须在 AuthMiddleware 之后使用
// 每次请求实时查库判断角色归属，角色变更立即生效
func RequireRole(accessService *access.AccessService, roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, model.Error(401, "未登录或会话已过期"))
			c.Abort()
			return
		}

		has, err := accessService.HasRole(userID, roleName)
		if err != nil {
			model.HandleError(c, err)
			c.Abort()
			return
		}
		if !has {
			metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
			c.JSON(http.StatusForbidden, model.Error(403, "权限不足"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentIdentity 从上下文提取已认证的身份信息
func CurrentIdentity(c *gin.Context) model.Identity {
	return model.Identity{
		ID:       c.GetString("user_id"),
		Username: c.GetString("username"),
		Email:    c.GetString("email"),
	}
}
