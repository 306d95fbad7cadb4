// Package mysql 提供用户仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/auth/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"gorm.io/gorm"
)

// UserModel 用户数据库模型，直接映射 users 表
type UserModel struct {
	gorm.Model
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Username     string `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	FullName     string `gorm:"column:full_name;type:varchar(255)"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	IsActive     bool   `gorm:"column:is_active;not null;default:true"`
	IsAdmin      bool   `gorm:"column:is_admin;not null;default:false"`
}

// TableName 指定表名
func (UserModel) TableName() string { return "users" }

// userRepositoryImpl 是 domain.UserRepository 接口的 GORM 实现
type userRepositoryImpl struct {
	db *db.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(database *db.DB) domain.UserRepository {
	return &userRepositoryImpl{db: database}
}

// Save 实现 domain.UserRepository.Save
func (r *userRepositoryImpl) Save(ctx context.Context, user *domain.User) error {
	model := toUserModel(user)
	if err := db.FromContext(ctx, r.db.DB).Create(model).Error; err != nil {
		logger.Error(ctx, "user_repository.save failed", "email", user.Email, "error", err)
		return fmt.Errorf("failed to save user: %w", err)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID 实现 domain.UserRepository.GetByID
func (r *userRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model UserModel
	if err := db.FromContext(ctx, r.db.DB).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "user_repository.get_by_id failed", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUser(&model), nil
}

// GetByEmail 实现 domain.UserRepository.GetByEmail
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserModel
	if err := db.FromContext(ctx, r.db.DB).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "user_repository.get_by_email failed", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toUser(&model), nil
}

// GetByUsername 实现 domain.UserRepository.GetByUsername
func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model UserModel
	if err := db.FromContext(ctx, r.db.DB).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "user_repository.get_by_username failed", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return toUser(&model), nil
}

// WithTx 实现 domain.UserRepository.WithTx
func (r *userRepositoryImpl) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

// mapping helpers

func toUserModel(u *domain.User) *UserModel {
	return &UserModel{
		Model:        gorm.Model{ID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt},
		Email:        u.Email,
		Username:     u.Username,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsAdmin:      u.IsAdmin,
	}
}

func toUser(m *UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Email:        m.Email,
		Username:     m.Username,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		IsAdmin:      m.IsAdmin,
	}
}
