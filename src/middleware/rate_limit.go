package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"resource-share/src/logger"
	"resource-share/src/metrics"
	"resource-share/src/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimitPolicy ルートグループごとの上限
type RateLimitPolicy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// RateLimitMiddleware クライアントごとの固定ウィンドウ方式レート制限
//
// 識別子はポリシー名とクライアントを組み合わせるため、ポリシー同士はカウンタを共有しない。
// リミッターがエラーを返した場合はリクエストを通す。
func RateLimitMiddleware(limiter ratelimit.Limiter, policy RateLimitPolicy, rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ratelimit.ClientIdentifier(c.Request)

		result, err := limiter.Check(c.Request.Context(), policy.Name+":"+clientID, policy.MaxRequests, policy.Window)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"policy":    policy.Name,
				"client_id": clientID,
				"error":     err.Error(),
			}).Error("レート制限のチェックに失敗したためリクエストを許可します")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(policy.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

		if !result.Allowed {
			retryAfter := result.RetryAfter(time.Now())
			seconds := int(math.Ceil(retryAfter.Seconds()))

			logger.WithFields(logrus.Fields{
				"policy":      policy.Name,
				"client_id":   clientID,
				"method":      c.Request.Method,
				"uri":         c.Request.RequestURI,
				"retry_after": seconds,
			}).Warn("レート制限に達しました")
			rec.RateLimited(policy.Name)

			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"message":     "请求过于频繁，请稍后再试",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}
