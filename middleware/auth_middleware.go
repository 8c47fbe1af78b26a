package middleware

import (
	"net/http"
	"strings"

	"ailablog/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 验证 token 是否有效并写入 user_id / device。
// session 为 nil 时跳过黑名单检查（无 Redis 的测试环境）。
func AuthMiddleware(session *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		// 检查 token 是否在黑名单
		if session != nil {
			in, _ := session.InBlackList(token)
			if in {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token invalid"})
				c.Abort()
				return
			}
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("device", claims.Device)
		c.Next()
	}
}

// OptionalAuth 与 AuthMiddleware 相同的解析逻辑，但匿名请求照常放行。
// 文章详情页用它来决定 liked 标记。
func OptionalAuth(session *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if session != nil {
			if in, _ := session.InBlackList(token); in {
				c.Next()
				return
			}
		}
		if claims, err := auth.ParseToken(token); err == nil {
			c.Set("user_id", claims.UserID)
			c.Set("device", claims.Device)
		}
		c.Next()
	}
}
