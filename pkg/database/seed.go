package database

import (
	"fmt"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 初始权限集合，命名遵循 <resource>:<action> 约定
var seedPermissions = []struct {
	Name        string
	Description string
}{
	{"user:read", "查看用户列表与详情"},
	{"user:write", "创建和修改用户"},
	{"user:delete", "删除用户"},
	{"role:read", "查看角色列表与详情"},
	{"role:write", "创建和修改角色"},
	{"role:delete", "删除角色"},
	{"permission:read", "查看权限列表"},
	{"permission:write", "创建和修改权限"},
	{"permission:delete", "删除权限"},
	{"menu:read", "查看菜单配置"},
	{"menu:write", "创建和修改菜单"},
	{"menu:delete", "删除菜单"},
}

// 初始菜单骨架：仪表盘公开，系统管理子菜单按权限可见
var seedMenus = []struct {
	Name        string
	Path        string
	Icon        string
	Parent      string // 父菜单名称，空为根节点
	Sort        int
	Permissions []string
}{
	{"仪表盘", "/dashboard", "dashboard", "", 1, nil},
	{"系统管理", "/system", "setting", "", 2, []string{"user:read", "role:read", "permission:read", "menu:read"}},
	{"用户管理", "/system/users", "user", "系统管理", 1, []string{"user:read"}},
	{"角色管理", "/system/roles", "role", "系统管理", 2, []string{"role:read"}},
	{"权限管理", "/system/permissions", "permission", "系统管理", 3, []string{"permission:read"}},
	{"菜单管理", "/system/menus", "menu", "系统管理", 4, []string{"menu:read"}},
}

// Seed 初始化基础数据：管理员账号、角色、权限和默认菜单。
// 幂等：已有数据时跳过，可安全重复执行。
func Seed(db *gorm.DB, initialAdminPassword string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		permIDs, err := seedPermissionSet(tx)
		if err != nil {
			return err
		}

		adminRoleID, err := seedRoles(tx, permIDs)
		if err != nil {
			return err
		}

		if err := seedAdminUser(tx, adminRoleID, initialAdminPassword); err != nil {
			return err
		}

		if err := seedMenuTree(tx, permIDs); err != nil {
			return err
		}

		return nil
	})
}

// seedPermissionSet 确保基础权限存在，返回 name -> id 映射
func seedPermissionSet(tx *gorm.DB) (map[string]string, error) {
	permIDs := make(map[string]string, len(seedPermissions))
	for _, p := range seedPermissions {
		var existing model.Permission
		err := tx.Where("name = ?", p.Name).First(&existing).Error
		if err == nil {
			permIDs[p.Name] = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to query permission %s: %w", p.Name, err)
		}

		perm := model.Permission{
			ID:          uuid.New().String(),
			Name:        p.Name,
			Description: p.Description,
		}
		if err := tx.Create(&perm).Error; err != nil {
			return nil, fmt.Errorf("failed to create permission %s: %w", p.Name, err)
		}
		permIDs[p.Name] = perm.ID
		logger.Infof("Seeded permission: %s", p.Name)
	}
	return permIDs, nil
}

// seedRoles 确保 admin 和 user 角色存在，admin 授予全部权限，返回 admin 角色 ID
func seedRoles(tx *gorm.DB, permIDs map[string]string) (string, error) {
	adminRole, created, err := ensureRole(tx, "admin", "系统管理员，拥有全部权限")
	if err != nil {
		return "", err
	}
	if _, _, err := ensureRole(tx, "user", "普通用户"); err != nil {
		return "", err
	}

	// 仅在首次创建 admin 角色时授权，避免覆盖运维后续调整
	if created {
		for _, id := range permIDs {
			rp := model.RolePermission{RoleID: adminRole.ID, PermissionID: id}
			if err := tx.Create(&rp).Error; err != nil {
				return "", fmt.Errorf("failed to grant permission to admin role: %w", err)
			}
		}
		logger.Infof("Granted %d permissions to admin role", len(permIDs))
	}
	return adminRole.ID, nil
}

func ensureRole(tx *gorm.DB, name, description string) (*model.Role, bool, error) {
	var existing model.Role
	err := tx.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, fmt.Errorf("failed to query role %s: %w", name, err)
	}

	role := model.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	if err := tx.Create(&role).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create role %s: %w", name, err)
	}
	logger.Infof("Seeded role: %s", name)
	return &role, true, nil
}

// seedAdminUser 确保管理员账号存在并绑定 admin 角色
func seedAdminUser(tx *gorm.DB, adminRoleID, initialPassword string) error {
	var existing model.User
	err := tx.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to query admin user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.User{
		ID:       uuid.New().String(),
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Status:   "active",
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	ur := model.UserRole{UserID: admin.ID, RoleID: adminRoleID}
	if err := tx.Create(&ur).Error; err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}

	logger.Infof("Seeded admin user, please change the initial password after first login")
	return nil
}

// seedMenuTree 确保默认菜单骨架存在并绑定可见性权限
func seedMenuTree(tx *gorm.DB, permIDs map[string]string) error {
	menuIDs := make(map[string]string, len(seedMenus))
	for _, m := range seedMenus {
		var existing model.Menu
		err := tx.Where("name = ?", m.Name).First(&existing).Error
		if err == nil {
			menuIDs[m.Name] = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to query menu %s: %w", m.Name, err)
		}

		parentID := ""
		if m.Parent != "" {
			parentID = menuIDs[m.Parent]
		}
		menu := model.Menu{
			ID:       uuid.New().String(),
			Name:     m.Name,
			Path:     m.Path,
			Icon:     m.Icon,
			ParentID: parentID,
			Sort:     m.Sort,
		}
		if err := tx.Create(&menu).Error; err != nil {
			return fmt.Errorf("failed to create menu %s: %w", m.Name, err)
		}
		menuIDs[m.Name] = menu.ID

		for _, permName := range m.Permissions {
			permID, ok := permIDs[permName]
			if !ok {
				continue
			}
			mp := model.MenuPermission{MenuID: menu.ID, PermissionID: permID}
			if err := tx.Create(&mp).Error; err != nil {
				return fmt.Errorf("failed to bind permission to menu %s: %w", m.Name, err)
			}
		}
		logger.Infof("Seeded menu: %s", m.Name)
	}
	return nil
}
