package model

import (
	"time"
)

// User 平台用户
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt哈希，不在JSON中暴露
	Gender    string    `json:"gender,omitempty" gorm:"type:varchar(10)"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'active';index"` // active, inactive
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// UserRole 用户-角色关联
type UserRole struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	RoleID    string    `json:"roleId" gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// UserWithRoles 用户及其角色信息
type UserWithRoles struct {
	User
	Roles   []string `json:"roles" gorm:"-"`
	RoleIDs []string `json:"roleIds" gorm:"-"`
}

// LoginRequest 登录请求（identifier 为用户名或邮箱）
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Identity 会话中携带的已验证身份
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUserRequest 创建用户请求（管理员功能）
type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	Gender   string   `json:"gender"`
	Status   string   `json:"status"`
	RoleIDs  []string `json:"roleIds"`
}

// UpdateUserRequest 更新用户请求，零值字段不更新
// RoleIDs 使用指针区分"未提供"和"清空角色"
type UpdateUserRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Gender   *string   `json:"gender"`
	Status   string    `json:"status"`
	RoleIDs  *[]string `json:"roleIds"`
}
