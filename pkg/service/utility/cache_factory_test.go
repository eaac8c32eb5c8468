package utility

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCacheFactory(t *testing.T) {
	t.Run("没有 Redis 时使用内存", func(t *testing.T) {
		svc, kind := NewCacheServiceWithFallback(nil)
		defer StopCacheService(svc)
		assert.Equal(t, CacheTypeMemory, kind)
		_, ok := svc.(*memoryCacheService)
		assert.True(t, ok)
	})

	t.Run("有 Redis 客户端时使用 Redis", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		defer client.Close()

		svc, kind := NewCacheServiceWithFallback(client)
		defer StopCacheService(svc)
		assert.Equal(t, CacheTypeRedis, kind)
		_, ok := svc.(*redisCacheService)
		assert.True(t, ok)
	})
}
