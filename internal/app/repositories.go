package app

import (
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	User       *repository.UserRepository
	Role       *repository.RoleRepository
	Permission *repository.PermissionRepository
	Menu       *repository.MenuRepository
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	db := database.DB
	return &Repositories{
		User:       repository.NewUserRepository(db),
		Role:       repository.NewRoleRepository(db),
		Permission: repository.NewPermissionRepository(db),
		Menu:       repository.NewMenuRepository(db),
	}
}
