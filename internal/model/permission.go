package model

import (
	"time"
)

// Permission 权限，授权的最小命名单元
// 命名约定为 <resource>:<action>，例如 user:delete
type Permission struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}

// CreatePermissionRequest 创建权限请求
type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// UpdatePermissionRequest 更新权限请求，零值字段不更新
type UpdatePermissionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
