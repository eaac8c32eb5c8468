/*
 * @Description: 根据 Redis 是否可用选择缓存实现
 * @Author: 安知鱼
 * @Date: 2025-10-05 00:00:00
 * @LastEditTime: 2025-09-19 15:26:09
 * @LastEditors: 安知鱼
 */
package utility

import (
	"github.com/redis/go-redis/v9"
)

// CacheServiceType 缓存服务类型
type CacheServiceType string

const (
	CacheTypeRedis  CacheServiceType = "redis"
	CacheTypeMemory CacheServiceType = "memory"
)

// NewCacheServiceWithFallback 为快照缓存与留言限额选择实现。
// redisClient 为 nil 时使用进程内存，此时多实例部署之间不共享缓存与计数。
func NewCacheServiceWithFallback(redisClient *redis.Client) (CacheService, CacheServiceType) {
	if redisClient == nil {
		return NewMemoryCacheService(), CacheTypeMemory
	}
	return NewCacheService(redisClient), CacheTypeRedis
}

// StopCacheService 释放缓存实现持有的后台资源，Redis 客户端由调用方关闭
func StopCacheService(svc CacheService) {
	if mem, ok := svc.(*memoryCacheService); ok {
		mem.Stop()
	}
}
