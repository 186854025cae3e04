package repository

import (
	"github.com/dnzakizamani/simple-login/internal/model"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Create 创建菜单
func (r *MenuRepository) Create(menu *model.Menu) error {
	return r.db.Create(menu).Error
}

// Update 更新菜单
func (r *MenuRepository) Update(menu *model.Menu) error {
	return r.db.Model(&model.Menu{}).
		Where("id = ?", menu.ID).
		Omit("created_at").
		Updates(menu).Error
}

// UpdateFields 按字段名更新菜单，支持显式置空 path/icon/parent_id
func (r *MenuRepository) UpdateFields(menuID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&model.Menu{}).
		Where("id = ?", menuID).
		Updates(fields).Error
}

// Delete 删除菜单及其权限关联
// 调用方需先确认菜单没有子菜单
func (r *MenuRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.MenuPermission{}, "menu_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Menu{}, "id = ?", id).Error
	})
}

// FindByID 根据ID查找菜单
func (r *MenuRepository) FindByID(id string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.Where("id = ?", id).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindByName 根据名称查找菜单
func (r *MenuRepository) FindByName(name string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.Where("name = ?", name).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindAll 查找所有菜单，按同级排序字段和创建时间升序
func (r *MenuRepository) FindAll() ([]model.Menu, error) {
	var menus []model.Menu
	err := r.db.Order("sort ASC, created_at ASC").Find(&menus).Error
	return menus, err
}

// FindPaged 分页查找菜单（管理端列表），keyword 模糊匹配名称
func (r *MenuRepository) FindPaged(page, pageSize int, keyword string) ([]model.Menu, int64, error) {
	var menus []model.Menu
	var total int64

	query := r.db.Model(&model.Menu{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("sort ASC, created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&menus).Error
	return menus, total, err
}

// FindByIDs 根据ID列表查找菜单，列表页解析父菜单名称用
func (r *MenuRepository) FindByIDs(ids []string) ([]model.Menu, error) {
	var menus []model.Menu
	if len(ids) == 0 {
		return menus, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&menus).Error
	return menus, err
}

// CountChildren 统计子菜单数量，删除前的引用检查
func (r *MenuRepository) CountChildren(menuID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Menu{}).Where("parent_id = ?", menuID).Count(&count).Error
	return count, err
}

// GetMenuPermissionIDs 查找菜单关联的权限ID列表
func (r *MenuRepository) GetMenuPermissionIDs(menuID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.MenuPermission{}).
		Where("menu_id = ?", menuID).
		Pluck("permission_id", &ids).Error
	return ids, err
}

// GetPermissionNamesByMenu 批量查找所有菜单关联的权限名称
// 返回 menuID -> 权限名列表 映射，构建可见菜单树时用，避免N+1查询
func (r *MenuRepository) GetPermissionNamesByMenu() (map[string][]string, error) {
	type row struct {
		MenuID string `gorm:"column:menu_id"`
		Name   string `gorm:"column:name"`
	}
	var rows []row
	err := r.db.Table("menu_permissions").
		Select("menu_permissions.menu_id, permissions.name").
		Joins("INNER JOIN permissions ON permissions.id = menu_permissions.permission_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, r := range rows {
		result[r.MenuID] = append(result[r.MenuID], r.Name)
	}
	return result, nil
}

// GetPermissionIDsForMenus 批量查找一组菜单关联的权限ID
// 返回 menuID -> 权限ID列表 映射，管理端列表用，避免N+1查询
func (r *MenuRepository) GetPermissionIDsForMenus(menuIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(menuIDs))
	if len(menuIDs) == 0 {
		return result, nil
	}

	var links []model.MenuPermission
	if err := r.db.Where("menu_id IN ?", menuIDs).Find(&links).Error; err != nil {
		return nil, err
	}

	for _, link := range links {
		result[link.MenuID] = append(result[link.MenuID], link.PermissionID)
	}
	return result, nil
}

// ReplacePermissions 替换菜单的权限集合（先删后插，事务保证原子性）
func (r *MenuRepository) ReplacePermissions(menuID string, permissionIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.MenuPermission{}, "menu_id = ?", menuID).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			mp := model.MenuPermission{MenuID: menuID, PermissionID: permID}
			if err := tx.Create(&mp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
