/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-11 18:38:27
 * @LastEditTime: 2025-09-13 11:20:45
 * @LastEditors: 安知鱼
 */
package auth

import "github.com/golang-jwt/jwt/v5"

// ClaimsKey 是用于在 gin.Context 中存储和检索整个用户信息结构体的键。
const ClaimsKey = "user_claims"

// RoleAdmin 是拥有后台写权限的角色
const RoleAdmin = "admin"

// CustomClaims 定义了 JWT 的自定义 Claims 结构体。
// 用户由外部认证服务管理，这里只携带用户 ID、邮箱与角色。
type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin 判断当前用户是否为管理员
func (c *CustomClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
