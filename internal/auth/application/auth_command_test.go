package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/auth/domain"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo 内存用户仓储，WithTx 直接执行回调
type fakeUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]*domain.User), nextID: 1}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (f *fakeUserRepo) Save(ctx context.Context, user *domain.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(repo domain.UserRepository) *AuthCommandService {
	return NewAuthCommandService(repo, NewTokenManager("test-secret", 30, "ecommerce"), nil, nil)
}

func TestRegisterCreatesActiveUserWithHashedPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterCommand{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pass",
		FullName: "Alice",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterRejectsDuplicateEmailOrUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	original, err := svc.Register(context.Background(), RegisterCommand{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"duplicate email", "alice@example.com", "someone_else"},
		{"duplicate username", "other@example.com", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterCommand{
				Email:    tt.email,
				Username: tt.username,
				Password: "another-pass",
			})
			require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
			assert.Len(t, repo.users, 1)
		})
	}

	// 失败的注册不碰已有账户：原始凭证仍可登录
	result, err := svc.Login(context.Background(), LoginCommand{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	userID, err := svc.tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, original.ID, userID)
}

func TestRegisterAllowsAdminFlag(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterCommand{
		Email:    "root@example.com",
		Username: "root",
		Password: "s3cret-pass",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: 5, Email: "alice@example.com", Username: "alice",
		PasswordHash: hashOf(t, "s3cret-pass"), IsActive: true,
	})
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), LoginCommand{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", result.TokenType)
	userID, err := svc.tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(5), userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: 5, Email: "alice@example.com", Username: "alice",
		PasswordHash: hashOf(t, "s3cret-pass"), IsActive: true,
	})
	svc := newTestAuthService(repo)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "nobody", "s3cret-pass"},
		{"wrong password", "alice", "wrong-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginCommand{Username: tt.username, Password: tt.password})
			// 两种失败不可区分
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: 5, Email: "alice@example.com", Username: "alice",
		PasswordHash: hashOf(t, "s3cret-pass"), IsActive: false,
	})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), LoginCommand{Username: "alice", Password: "s3cret-pass"})
	require.ErrorIs(t, err, domain.ErrInactiveUser)
}
