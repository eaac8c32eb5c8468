// pkg/util/ip.go
package util

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// forwardedHeaders 按优先级排列的代理/CDN 头部
// 支持的 CDN: Cloudflare, 腾讯云 EdgeOne, 阿里云 CDN/ESA 等
var forwardedHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Original-Forwarded-For",
	"CF-Connecting-IP",
	"EO-Connecting-IP",
	"Ali-CDN-Real-IP",
	"True-Client-IP",
	"X-Client-IP",
}

// GetRealClientIP 获取客户端真实IP地址，依次检查代理头部，最后回退到 gin 的 ClientIP
func GetRealClientIP(c *gin.Context) string {
	for _, header := range forwardedHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		// X-Forwarded-For 可能包含多个IP，格式：client, proxy1, proxy2
		first := strings.TrimSpace(strings.Split(value, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return c.ClientIP()
}
