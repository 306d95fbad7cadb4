package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/auth/domain"
)

// AuthQueryService 认证查询服务
type AuthQueryService struct {
	repo domain.UserRepository
}

// NewAuthQueryService 创建认证查询服务实例
func NewAuthQueryService(repo domain.UserRepository) *AuthQueryService {
	return &AuthQueryService{repo: repo}
}

// GetUser 根据 ID 获取用户
func (s *AuthQueryService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ResolveIdentity 将令牌携带的用户 ID 解析为请求身份
func (s *AuthQueryService) ResolveIdentity(ctx context.Context, userID uint) (domain.Identity, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil {
		return domain.Identity{}, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return domain.Identity{}, domain.ErrInactiveUser
	}
	return domain.Identity{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}, nil
}
