// Package domain 包含账户与访问控制的领域模型
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyRegistered 邮箱或用户名已被注册
	ErrAlreadyRegistered = errors.New("email or username already registered")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInactiveUser 账户已停用
	ErrInactiveUser = errors.New("inactive user")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// User 用户实体
type User struct {
	ID           uint      `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
}

// NewUser 创建用户，默认激活
func NewUser(email, username, fullName, passwordHash string, isAdmin bool) *User {
	return &User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
}

// Identity 请求方已解析的身份，受保护操作只消费该值，不接触凭证
type Identity struct {
	UserID  uint
	Email   string
	IsAdmin bool
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// 保存用户
	Save(ctx context.Context, user *User) error
	// 按 ID 获取用户，不存在返回 nil
	GetByID(ctx context.Context, id uint) (*User, error)
	// 按邮箱获取用户，不存在返回 nil
	GetByEmail(ctx context.Context, email string) (*User, error)
	// 按用户名获取用户，不存在返回 nil
	GetByUsername(ctx context.Context, username string) (*User, error)
	// 在事务中执行
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
