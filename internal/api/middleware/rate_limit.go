package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/pkg/redis"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// scope: 限流分组，同一分组内按客户端 IP 计数
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(scope, c.ClientIP()), limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(scope, ip string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, ip)
}
