package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/staffing-ats/pkg/response"
)

const (
	CtxUserID = "auth_user_id"
	CtxRoleID = "auth_role_id"
)

// Claims JWT 负载
type Claims struct {
	UserID string `json:"user_id"`
	RoleID int64  `json:"role_id"`
	jwt.RegisteredClaims
}

// Auth 解析 Bearer token，注入 user_id / role_id
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRoleID, claims.RoleID)
		c.Next()
	}
}

// UserID 从上下文取当前用户 id
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
