package repository

import (
	"github.com/dnzakizamani/simple-login/internal/model"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Create 创建权限
func (r *PermissionRepository) Create(perm *model.Permission) error {
	return r.db.Create(perm).Error
}

// Update 更新权限
func (r *PermissionRepository) Update(perm *model.Permission) error {
	return r.db.Model(&model.Permission{}).
		Where("id = ?", perm.ID).
		Omit("created_at").
		Updates(perm).Error
}

// UpdateDescription 单独更新描述字段（允许置空）
func (r *PermissionRepository) UpdateDescription(permID, description string) error {
	return r.db.Model(&model.Permission{}).
		Where("id = ?", permID).
		Update("description", description).Error
}

// Delete 删除权限
// 调用方需先确认没有角色引用该权限
func (r *PermissionRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 菜单侧的关联随权限一起清理
		if err := tx.Delete(&model.MenuPermission{}, "permission_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Permission{}, "id = ?", id).Error
	})
}

// FindByID 根据ID查找权限
func (r *PermissionRepository) FindByID(id string) (*model.Permission, error) {
	var perm model.Permission
	err := r.db.Where("id = ?", id).First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindByName 根据名称查找权限
func (r *PermissionRepository) FindByName(name string) (*model.Permission, error) {
	var perm model.Permission
	err := r.db.Where("name = ?", name).First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindPaged 分页查找权限，keyword 模糊匹配名称
func (r *PermissionRepository) FindPaged(page, pageSize int, keyword string) ([]model.Permission, int64, error) {
	var perms []model.Permission
	var total int64

	query := r.db.Model(&model.Permission{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&perms).Error
	return perms, total, err
}

// FindByIDs 根据ID列表查找权限，用于校验关联权限是否存在
func (r *PermissionRepository) FindByIDs(ids []string) ([]model.Permission, error) {
	var perms []model.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&perms).Error
	return perms, err
}

// CountRoleRefs 统计引用该权限的角色数，删除前的引用检查
func (r *PermissionRepository) CountRoleRefs(permID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RolePermission{}).Where("permission_id = ?", permID).Count(&count).Error
	return count, err
}
