package repository

import (
	"github.com/dnzakizamani/simple-login/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *UserRepository) Update(user *model.User) error {
	// 使用 Updates 并排除 created_at，避免零值覆盖
	return r.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Omit("created_at").
		Updates(user).Error
}

// UpdateGender 单独更新性别字段（允许置空）
func (r *UserRepository) UpdateGender(userID, gender string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("gender", gender).Error
}

// Delete 删除用户及其角色关联
func (r *UserRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.UserRole{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
}

// FindByID 根据ID查找用户
func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 根据用户名查找用户
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier 根据用户名或邮箱查找用户（登录入口）
func (r *UserRepository) FindByIdentifier(identifier string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindPaged 分页查找用户，keyword 模糊匹配用户名或邮箱
func (r *UserRepository) FindPaged(page, pageSize int, keyword string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.Model(&model.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	return users, total, err
}

// GetUserRoles 查找用户的所有角色
func (r *UserRepository) GetUserRoles(userID string) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Table("roles").
		Select("roles.*").
		Joins("INNER JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Scan(&roles).Error
	return roles, err
}

// GetRolesForUsers 批量查找多个用户的角色，返回 userID -> roles 映射
// 列表页用，避免N+1查询
func (r *UserRepository) GetRolesForUsers(userIDs []string) (map[string][]model.Role, error) {
	result := make(map[string][]model.Role, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	type roleRow struct {
		model.Role
		UserID string `gorm:"column:user_id"`
	}
	var rows []roleRow
	err := r.db.Table("roles").
		Select("roles.*, user_roles.user_id as user_id").
		Joins("INNER JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Role)
	}
	return result, nil
}

// ReplaceRoles 替换用户的角色集合（先删后插，事务保证原子性）
func (r *UserRepository) ReplaceRoles(userID string, roleIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.UserRole{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			ur := model.UserRole{UserID: userID, RoleID: roleID}
			if err := tx.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
