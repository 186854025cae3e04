package repository

import (
	"github.com/dnzakizamani/simple-login/internal/model"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create 创建角色
func (r *RoleRepository) Create(role *model.Role) error {
	return r.db.Create(role).Error
}

// Update 更新角色
func (r *RoleRepository) Update(role *model.Role) error {
	// 使用 Updates 并排除 created_at，避免零值覆盖
	return r.db.Model(&model.Role{}).
		Where("id = ?", role.ID).
		Omit("created_at").
		Updates(role).Error
}

// UpdateDescription 单独更新描述字段（允许置空）
func (r *RoleRepository) UpdateDescription(roleID, description string) error {
	return r.db.Model(&model.Role{}).
		Where("id = ?", roleID).
		Update("description", description).Error
}

// Delete 删除角色及其权限关联
// 调用方需先确认角色没有成员
func (r *RoleRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RolePermission{}, "role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Role{}, "id = ?", id).Error
	})
}

// FindByID 根据ID查找角色
func (r *RoleRepository) FindByID(id string) (*model.Role, error) {
	var role model.Role
	err := r.db.Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByName 根据名称查找角色
func (r *RoleRepository) FindByName(name string) (*model.Role, error) {
	var role model.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindPaged 分页查找角色，keyword 模糊匹配名称
func (r *RoleRepository) FindPaged(page, pageSize int, keyword string) ([]model.Role, int64, error) {
	var roles []model.Role
	var total int64

	query := r.db.Model(&model.Role{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&roles).Error
	return roles, total, err
}

// FindByIDs 根据ID列表查找角色，用于校验关联角色是否存在
func (r *RoleRepository) FindByIDs(ids []string) ([]model.Role, error) {
	var roles []model.Role
	if len(ids) == 0 {
		return roles, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&roles).Error
	return roles, err
}

// CountMembers 统计角色下的用户数，删除前的引用检查
func (r *RoleRepository) CountMembers(roleID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserRole{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

// GetRolePermissions 查找角色的所有权限
func (r *RoleRepository) GetRolePermissions(roleID string) ([]model.Permission, error) {
	var perms []model.Permission
	err := r.db.Table("permissions").
		Select("permissions.*").
		Joins("INNER JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name").
		Scan(&perms).Error
	return perms, err
}

// GetPermissionsByRole 批量查找多个角色的权限，返回 roleID -> permissions 映射
// 列表页用，避免N+1查询
func (r *RoleRepository) GetPermissionsByRole(roleIDs []string) (map[string][]model.Permission, error) {
	result := make(map[string][]model.Permission, len(roleIDs))
	if len(roleIDs) == 0 {
		return result, nil
	}

	type permRow struct {
		model.Permission
		RoleID string `gorm:"column:role_id"`
	}
	var rows []permRow
	err := r.db.Table("permissions").
		Select("permissions.*, role_permissions.role_id as role_id").
		Joins("INNER JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Order("permissions.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.RoleID] = append(result[row.RoleID], row.Permission)
	}
	return result, nil
}

// GetPermissionsForRoles 查找一组角色的权限并集
// 同一权限在多个角色中出现时只返回一次
func (r *RoleRepository) GetPermissionsForRoles(roleIDs []string) ([]model.Permission, error) {
	var perms []model.Permission
	if len(roleIDs) == 0 {
		return perms, nil
	}
	err := r.db.Table("permissions").
		Select("DISTINCT permissions.*").
		Joins("INNER JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Order("permissions.name").
		Scan(&perms).Error
	return perms, err
}

// ReplacePermissions 替换角色的权限集合（先删后插，事务保证原子性）
func (r *RoleRepository) ReplacePermissions(roleID string, permissionIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RolePermission{}, "role_id = ?", roleID).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			rp := model.RolePermission{RoleID: roleID, PermissionID: permID}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
