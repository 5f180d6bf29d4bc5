package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit caps anonymous requests per client IP in fixed windows counted in Redis.
// A nil client or a non-positive max disables the limit. Redis errors fail open.
func RateLimit(rdb *redis.Client, scope string, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("portfolio:rate_limit:%s:%s:%d", scope, ip, bucket)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit check failed", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.PExpire(ctx, key, window+time.Second).Err(); err != nil {
				log.Warn("rate limit expiry not set", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c, "Too many requests, please slow down")
			return
		}

		c.Next()
	}
}
