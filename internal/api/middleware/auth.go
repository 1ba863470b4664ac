package middleware

import (
	"crypto/rsa"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/internal/model"
	"github.com/qs3c/anim_go_server/internal/pkg/jwt"
	"github.com/qs3c/anim_go_server/internal/pkg/response"
)

const (
	UserIDKey     = "userID"
	ExternalIDKey = "externalID"
)

// UserResolver 把身份提供方的 subject 解析成本地用户（首访创建）
type UserResolver interface {
	ResolveUser(externalID, email, name string) (*model.User, error)
}

// Auth JWT 认证中间件。验证身份提供方签发的 RS256 令牌，
// 并把 subject 解析为本地用户写入上下文。
// WebSocket 握手无法携带请求头，允许通过 token 查询参数传递。
func Auth(key *rsa.PublicKey, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.AuthError(c, "Missing authorization token")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, key)
		if err != nil {
			response.AuthError(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.ResolveUser(claims.Subject, claims.Email, claims.Name)
		if err != nil {
			response.ServerError(c, "")
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(ExternalIDKey, claims.Subject)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return ""
		}
		return tokenString
	}
	return c.Query("token")
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetExternalID 从上下文获取身份提供方 subject
func GetExternalID(c *gin.Context) (string, bool) {
	externalID, exists := c.Get(ExternalIDKey)
	if !exists {
		return "", false
	}
	id, ok := externalID.(string)
	return id, ok
}
