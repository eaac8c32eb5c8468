/*
 * @Description: 频率限制中间件
 * @Author: 安知鱼
 * @Date: 2025-11-08 00:00:00
 * @LastEditTime: 2025-09-15 14:12:20
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/util"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 超过这个时间未访问的限流器会被清理
const limiterIdleTTL = 10 * time.Minute

// ipRateLimiter 用于存储每个IP地址的限流器
type ipRateLimiter struct {
	limiters map[string]*limiterInfo
	mu       sync.Mutex
	every    rate.Limit
	// 突发请求数（允许短时间内的突发流量）
	burst int
	now   func() time.Time
}

// limiterInfo 存储限流器及其最后访问时间
type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

// newIPRateLimiter 创建一个新的IP限流器，每个IP每分钟允许 requestsPerMinute 次请求
func newIPRateLimiter(requestsPerMinute, burst int) *ipRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limiters: make(map[string]*limiterInfo),
		every:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

// allow 判断该IP的本次请求是否放行，顺带清理闲置的限流器
func (i *ipRateLimiter) allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	info, exists := i.limiters[ip]
	if !exists {
		info = &limiterInfo{limiter: rate.NewLimiter(i.every, i.burst)}
		i.limiters[ip] = info
		i.sweep(now)
	}
	info.lastAccessed = now
	return info.limiter.AllowN(now, 1)
}

func (i *ipRateLimiter) sweep(now time.Time) {
	for ip, info := range i.limiters {
		if now.Sub(info.lastAccessed) > limiterIdleTTL {
			delete(i.limiters, ip)
		}
	}
}

// CustomRateLimit 创建一个自定义的频率限制中间件
// requestsPerMinute: 每分钟允许的请求数
// burst: 突发请求数
func CustomRateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(requestsPerMinute, burst)

	return func(c *gin.Context) {
		if !limiter.allow(util.GetRealClientIP(c)) {
			response.Fail(c, http.StatusTooManyRequests, "Prea multe cereri. Încearcă din nou mai târziu.")
			c.Abort()
			return
		}

		c.Next()
	}
}
