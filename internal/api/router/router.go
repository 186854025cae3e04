package router

import (
	"net/http"

	authhandler "github.com/dnzakizamani/simple-login/internal/api/handler/auth"
	permhandler "github.com/dnzakizamani/simple-login/internal/api/handler/permission"
	systemhandler "github.com/dnzakizamani/simple-login/internal/api/handler/system"
	"github.com/dnzakizamani/simple-login/internal/api/middleware"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// adminRole 管理接口要求的角色名
const adminRole = "admin"

func Setup(
	cfg *config.Config,
	authHandler *authhandler.AuthHandler,
	userHandler *systemhandler.UserHandler,
	menuHandler *systemhandler.MenuHandler,
	roleHandler *permhandler.RoleHandler,
	permissionHandler *permhandler.PermissionHandler,
	authService *authsvc.AuthService,
	accessService *access.AccessService,
) *gin.Engine {
	gin.SetMode(ginMode(cfg.Server.Mode))
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.Metrics())

	// 健康检查和指标，不要求认证
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 认证入口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login",
			middleware.LoginRateLimit(cfg.Security.LoginRateLimit),
			authHandler.Login,
		)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me",
			middleware.AuthMiddleware(authService, cfg.Security.CookieName),
			authHandler.Me,
		)
	}

	// 登录即可访问
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authService, cfg.Security.CookieName))
	{
		authed.GET("/menus/user", menuHandler.UserMenus)
	}

	// 管理接口，要求 admin 角色（每次请求实时查库）
	admin := api.Group("")
	admin.Use(
		middleware.AuthMiddleware(authService, cfg.Security.CookieName),
		middleware.RequireRole(accessService, adminRole),
	)
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.POST("/users", userHandler.CreateUser)
		admin.PUT("/users/:id", userHandler.UpdateUser)
		admin.DELETE("/users/:id", userHandler.DeleteUser)

		admin.GET("/roles", roleHandler.ListRoles)
		admin.GET("/roles/:id", roleHandler.GetRole)
		admin.POST("/roles", roleHandler.CreateRole)
		admin.PUT("/roles/:id", roleHandler.UpdateRole)
		admin.DELETE("/roles/:id", roleHandler.DeleteRole)

		admin.GET("/permissions", permissionHandler.ListPermissions)
		admin.GET("/permissions/:id", permissionHandler.GetPermission)
		admin.POST("/permissions", permissionHandler.CreatePermission)
		admin.PUT("/permissions/:id", permissionHandler.UpdatePermission)
		admin.DELETE("/permissions/:id", permissionHandler.DeletePermission)

		admin.GET("/menus", menuHandler.ListMenus)
		admin.GET("/menus/:id", menuHandler.GetMenu)
		admin.POST("/menus", menuHandler.CreateMenu)
		admin.PUT("/menus/:id", menuHandler.UpdateMenu)
		admin.DELETE("/menus/:id", menuHandler.DeleteMenu)
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
