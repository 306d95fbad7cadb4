// Package ratelimit 提供基于 Redis 的分布式限流，多实例部署共享同一份配额
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// keyPrefix 限流键前缀，与缓存键隔离
const keyPrefix = "ecommerce:ratelimit:"

// Limit 限流规则
type Limit struct {
	// 周期内允许的请求数
	Rate int
	// 计数周期
	Period time.Duration
	// 突发容量
	Burst int
}

// PerSecond 按 QPS 构造限流规则
func PerSecond(qps, burst int) Limit {
	return Limit{Rate: qps, Period: time.Second, Burst: burst}
}

// Result 单次限流判定结果
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// Limiter 限流器接口
type Limiter interface {
	// Allow 判定 subject（用户或来源 IP）的本次请求是否放行
	Allow(ctx context.Context, subject string, limit Limit) (*Result, error)
}

// RedisLimiter 是 Limiter 接口的 Redis 实现，redis_rate 提供 GCRA 算法
type RedisLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisLimiter 创建 Redis 限流器
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

// Allow 实现 Limiter.Allow
func (r *RedisLimiter) Allow(ctx context.Context, subject string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, keyPrefix+subject, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
