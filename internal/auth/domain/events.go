package domain

import (
	"context"
	"time"
)

// 事件类型
const (
	UserRegisteredEventType = "user.registered"
	UserLoggedInEventType   = "user.logged_in"
)

// UserRegisteredEvent 用户注册事件
type UserRegisteredEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLoggedInEvent 用户登录事件
type UserLoggedInEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, event any) error
}
