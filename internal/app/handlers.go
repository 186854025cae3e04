package app

import (
	authhandler "github.com/dnzakizamani/simple-login/internal/api/handler/auth"
	permhandler "github.com/dnzakizamani/simple-login/internal/api/handler/permission"
	systemhandler "github.com/dnzakizamani/simple-login/internal/api/handler/system"
	"github.com/dnzakizamani/simple-login/pkg/config"
)

// Handlers 包含所有 Handler 实例
type Handlers struct {
	Auth       *authhandler.AuthHandler
	User       *systemhandler.UserHandler
	Menu       *systemhandler.MenuHandler
	Role       *permhandler.RoleHandler
	Permission *permhandler.PermissionHandler
}

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(repos *Repositories, services *Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       authhandler.NewAuthHandler(services.Auth, services.Access, &cfg.Security),
		User:       systemhandler.NewUserHandler(repos.User, repos.Role, services.Auth),
		Menu:       systemhandler.NewMenuHandler(repos.Menu, repos.Permission, services.Access),
		Role:       permhandler.NewRoleHandler(repos.Role, repos.Permission),
		Permission: permhandler.NewPermissionHandler(repos.Permission),
	}
}
