package app

import (
	"github.com/dnzakizamani/simple-login/internal/service/access"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/config"
)

// Services 包含所有 Service 实例
type Services struct {
	Auth   *authsvc.AuthService
	Access *access.AccessService
}

// InitializeServices 初始化所有 Service
func InitializeServices(repos *Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:   authsvc.NewAuthService(repos.User, &cfg.Security),
		Access: access.NewAccessService(repos.User, repos.Role, repos.Menu),
	}
}
