package application

import (
	"context"
	"time"

	"github.com/wyfcoding/ecommerce/internal/auth/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

// RegisterCommand 注册命令
type RegisterCommand struct {
	Email    string
	Username string
	Password string
	FullName string
	IsAdmin  bool
}

// LoginCommand 登录命令
type LoginCommand struct {
	Username string
	Password string
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthCommandService 认证命令服务
type AuthCommandService struct {
	repo      domain.UserRepository
	tokens    *TokenManager
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewAuthCommandService 创建认证命令服务实例
func NewAuthCommandService(repo domain.UserRepository, tokens *TokenManager, publisher domain.EventPublisher, m *metrics.Metrics) *AuthCommandService {
	return &AuthCommandService{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
		metrics:   m,
	}
}

// Register 处理用户注册。邮箱与用户名的唯一性检查和写入在同一事务内完成。
func (s *AuthCommandService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		byEmail, err := s.repo.GetByEmail(txCtx, cmd.Email)
		if err != nil {
			return err
		}
		byUsername, err := s.repo.GetByUsername(txCtx, cmd.Username)
		if err != nil {
			return err
		}
		if byEmail != nil || byUsername != nil {
			return domain.ErrAlreadyRegistered
		}

		user = domain.NewUser(cmd.Email, cmd.Username, cmd.FullName, string(hash), cmd.IsAdmin)
		return s.repo.Save(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Username:  user.Username,
			IsAdmin:   user.IsAdmin,
			Timestamp: time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.UserRegisteredEventType, user.Email, event); err != nil {
			logger.Warn(ctx, "failed to publish user registered event", "user_id", user.ID, "error", err)
		}
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login 处理用户登录，校验凭证并签发访问令牌
func (s *AuthCommandService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := domain.UserLoggedInEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Timestamp: time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.UserLoggedInEventType, user.Email, event); err != nil {
			logger.Warn(ctx, "failed to publish user logged in event", "user_id", user.ID, "error", err)
		}
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
