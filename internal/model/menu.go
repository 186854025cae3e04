package model

import (
	"time"
)

// Menu 菜单模型，通过 ParentID 形成树
type Menu struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Path      string    `json:"path,omitempty" gorm:"type:varchar(255)"`          // 路由路径，可为空（纯分组节点）
	Icon      string    `json:"icon,omitempty" gorm:"type:varchar(50)"`           // 图标键，渲染时经 ResolveIcon 解析
	ParentID  string    `json:"parentId" gorm:"type:varchar(36);index;default:''"` // 父菜单ID，空字符串表示顶级菜单
	Sort      int       `json:"sort" gorm:"default:0;index"`                      // 同级排序
	Children  []Menu    `json:"children,omitempty" gorm:"-"`                      // 子菜单（不存储）
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Menu) TableName() string {
	return "menus"
}

// MenuPermission 菜单-权限关联
// 没有任何关联权限的菜单对所有登录用户可见；
// 有关联权限的菜单，用户持有其中任意一个权限即可见（逻辑或）
type MenuPermission struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MenuID       string    `json:"menuId" gorm:"type:varchar(36);not null;index"`
	PermissionID string    `json:"permissionId" gorm:"type:varchar(36);not null;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (MenuPermission) TableName() string {
	return "menu_permissions"
}

// MenuWithPermissions 带权限信息的菜单（管理端列表用）
type MenuWithPermissions struct {
	Menu
	ParentName    string   `json:"parentName,omitempty" gorm:"-"`
	PermissionIDs []string `json:"permissionIds" gorm:"-"`
}

// CreateMenuRequest 创建菜单请求
type CreateMenuRequest struct {
	Name          string   `json:"name" binding:"required,max=100"`
	Path          string   `json:"path"`
	Icon          string   `json:"icon"`
	ParentID      string   `json:"parentId"`
	Sort          int      `json:"sort"`
	PermissionIDs []string `json:"permissionIds"`
}

// UpdateMenuRequest 更新菜单请求，零值字段不更新
// ParentID/Sort/PermissionIDs 使用指针区分"未提供"和"置空"
type UpdateMenuRequest struct {
	Name          string    `json:"name"`
	Path          *string   `json:"path"`
	Icon          *string   `json:"icon"`
	ParentID      *string   `json:"parentId"`
	Sort          *int      `json:"sort"`
	PermissionIDs *[]string `json:"permissionIds"`
}
