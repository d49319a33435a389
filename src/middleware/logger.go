package middleware

import (
	"time"

	"resource-share/src/logger"
	"resource-share/src/ratelimit"
	"resource-share/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware 構造化ログを使用したロギングmiddleware
//
// client_id はレート制限のキーと同じ値
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// リクエスト開始時刻を記録
		start := time.Now()
		clientID := ratelimit.ClientIdentifier(c.Request)

		// リクエスト情報をログに記録
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"uri":        c.Request.RequestURI,
			"client_id":  clientID,
			"user_agent": c.Request.UserAgent(),
		}).Debug("リクエスト開始")

		// 次のmiddlewareまたはハンドラーを実行
		c.Next()

		// レスポンス処理後のログ出力
		statusCode := c.Writer.Status()
		fields := logrus.Fields{
			"method":        c.Request.Method,
			"route":         routeOf(c),
			"uri":           c.Request.RequestURI,
			"client_id":     clientID,
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"response_size": c.Writer.Size(),
		}
		// 管理者APIでは認証済みのメールアドレスも残す
		if claims, ok := c.Get(ContextKeyAdmin); ok {
			if admin, ok := claims.(*service.AdminClaims); ok {
				fields["admin"] = admin.Email
			}
		}
		logEntry := logger.WithFields(fields)

		// ステータスコードに応じてログレベルを変更
		switch {
		case statusCode >= 500:
			logEntry.Error("リクエスト完了 - サーバーエラー")
		case statusCode == 429:
			logEntry.Warn("リクエスト完了 - レート制限")
		case statusCode >= 400:
			logEntry.Warn("リクエスト完了 - クライアントエラー")
		default:
			logEntry.Info("リクエスト完了 - 成功")
		}

		// エラーがある場合は追加でログ出力
		if len(c.Errors) > 0 {
			logger.WithFields(logrus.Fields{
				"route":  routeOf(c),
				"errors": c.Errors.String(),
			}).Error("リクエスト処理中にエラーが発生")
		}
	}
}

// routeOf 登録されていないパスは unmatched として集約する
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
