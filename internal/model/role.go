package model

import (
	"time"
)

// Role 角色，纯粹的权限分组
type Role struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission 角色-权限关联
type RolePermission struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RoleID       string    `json:"roleId" gorm:"type:varchar(36);not null;index"`
	PermissionID string    `json:"permissionId" gorm:"type:varchar(36);not null;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// RoleWithPermissions 角色及其权限信息
type RoleWithPermissions struct {
	Role
	Permissions   []string `json:"permissions" gorm:"-"`
	PermissionIDs []string `json:"permissionIds" gorm:"-"`
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name          string   `json:"name" binding:"required,max=100"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permissionIds"`
}

// UpdateRoleRequest 更新角色请求，零值字段不更新
// PermissionIDs 使用指针区分"未提供"和"清空权限"
type UpdateRoleRequest struct {
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	PermissionIDs *[]string `json:"permissionIds"`
}
