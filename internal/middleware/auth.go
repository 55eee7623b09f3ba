package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"Lee_Meetup/internal/pkg"
)

const ContextUserIDKey = "user_id"

// TokenVerifier 由 service.AuthService 实现
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware 无状态校验 Bearer token，通过后注入 user_id
func AuthMiddleware(auth TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, "Authentication required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortAuth(c, "Invalid or expired token")
			return
		}

		userID, err := auth.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			abortAuth(c, pkg.Message(err))
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func abortAuth(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(pkg.KindAuth.Status(), gin.H{"message": msg})
}
