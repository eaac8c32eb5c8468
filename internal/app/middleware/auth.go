// internal/app/middleware/auth.go
package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"

	"github.com/gin-gonic/gin"
)

// 面向访客的提示信息，站点语言为罗马尼亚语
const (
	msgAuthRequired = "Autentificare necesară"
	msgTokenInvalid = "Sesiune invalidă sau expirată"
	msgAdminOnly    = "Acces restricționat"
)

type Middleware struct {
	secret []byte
}

func NewMiddleware(secret []byte) *Middleware {
	return &Middleware{secret: secret}
}

// JWTAuth 是一个强制性的JWT认证中间件
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, msgAuthRequired)
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenString, m.secret)
		if err != nil {
			log.Printf("[JWTAuth] JWT token解析失败: %v", err)
			response.Fail(c, http.StatusUnauthorized, msgTokenInvalid)
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// AdminAuth 是一个管理员权限验证中间件，需要放在 JWTAuth 之后。
// 未登录返回 401，已登录但不是管理员返回 403。
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, msgAuthRequired)
			c.Abort()
			return
		}

		if !claims.IsAdmin() {
			log.Printf("[AdminAuth] 权限不足: 用户 %s 的角色为 '%s'", claims.UserID, claims.Role)
			response.Fail(c, http.StatusForbidden, msgAdminOnly)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser 返回当前请求的用户信息，未登录时第二个返回值为 false
func CurrentUser(c *gin.Context) (*auth.CustomClaims, bool) {
	value, exists := c.Get(auth.ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.CustomClaims)
	return claims, ok && claims != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
