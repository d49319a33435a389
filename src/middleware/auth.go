package middleware

import (
	"net/http"
	"strings"

	"resource-share/src/logger"
	"resource-share/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContextKeyAdmin 認証済み管理者のクレームを格納するキー
const ContextKeyAdmin = "admin"

// AdminAuthMiddleware 管理者トークンを検証するmiddleware
func AdminAuthMiddleware(authService service.AdminAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Authorizationヘッダーがありません")
			unauthorized(c, "Authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Bearer tokenの形式が正しくありません")
			unauthorized(c, "Invalid authorization format")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: tokenが空です")
			unauthorized(c, "Token is empty")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			}).Warn("認証失敗: 無効なJWTトークン")
			unauthorized(c, "Invalid token")
			return
		}

		c.Set(ContextKeyAdmin, claims)
		logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"admin":     claims.Email,
		}).Debug("認証成功")
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": message,
	})
}
