package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
)

// SubjectFunc 解析请求的限流主体。返回空串时回退到客户端 IP，
// 这样未认证流量按来源 IP 限流，已认证流量按账户限流，换 IP 无法绕开配额。
type SubjectFunc func(c *gin.Context) string

// RateLimitMiddleware 分布式限流中间件。限流器故障时放行，
// 不让 Redis 抖动放大为全站 5xx。
func RateLimitMiddleware(limiter ratelimit.Limiter, cfg config.RateLimitConfig, subjectOf SubjectFunc) gin.HandlerFunc {
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		subject := ""
		if subjectOf != nil {
			subject = subjectOf(c)
		}
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		res, err := limiter.Allow(c.Request.Context(), subject, limit)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter.Seconds()), 10))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter.Seconds()), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": res.RetryAfter.String(),
			})
			return
		}

		c.Next()
	}
}
