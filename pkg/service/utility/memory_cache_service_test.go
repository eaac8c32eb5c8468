package utility

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) (*memoryCacheService, *time.Time) {
	t.Helper()
	svc := NewMemoryCacheService().(*memoryCacheService)
	t.Cleanup(svc.Stop)

	now := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestMemoryCache(t)

	require.NoError(t, svc.Set(ctx, "str", "valoare", 0))
	require.NoError(t, svc.Set(ctx, "bytes", []byte("octeti"), 0))
	require.NoError(t, svc.Set(ctx, "num", 42, time.Minute))

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "字符串", key: "str", want: "valoare"},
		{name: "字节切片", key: "bytes", want: "octeti"},
		{name: "数字", key: "num", want: "42"},
		{name: "不存在的键", key: "missing", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("过期后返回空", func(t *testing.T) {
		*now = now.Add(2 * time.Minute)
		got, err := svc.Get(ctx, "num")
		require.NoError(t, err)
		assert.Empty(t, got)
		// 没有过期时间的键保持不变
		got, _ = svc.Get(ctx, "str")
		assert.Equal(t, "valoare", got)
	})
}

func TestMemoryCacheIncrementKeepsExpiry(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestMemoryCache(t)

	count, err := svc.Increment(ctx, "quota")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.NoError(t, svc.Expire(ctx, "quota", time.Hour))

	count, err = svc.Increment(ctx, "quota")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	*now = now.Add(59 * time.Minute)
	count, err = svc.Increment(ctx, "quota")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// 计数不会延长窗口
	*now = now.Add(2 * time.Minute)
	count, err = svc.Increment(ctx, "quota")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMemoryCacheIncrementNonInteger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestMemoryCache(t)

	require.NoError(t, svc.Set(ctx, "text", "abc", 0))
	_, err := svc.Increment(ctx, "text")
	assert.Error(t, err)
}

func TestMemoryCacheDeleteAndExpire(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestMemoryCache(t)

	require.NoError(t, svc.Set(ctx, "a", "1", 0))
	require.NoError(t, svc.Set(ctx, "b", "2", 0))
	require.NoError(t, svc.Set(ctx, "c", "3", 0))

	require.NoError(t, svc.Delete(ctx, "a", "b", "missing"))
	got, _ := svc.Get(ctx, "a")
	assert.Empty(t, got)

	// 非正的过期时间直接删除
	require.NoError(t, svc.Expire(ctx, "c", 0))
	got, _ = svc.Get(ctx, "c")
	assert.Empty(t, got)

	assert.NoError(t, svc.Expire(ctx, "missing", time.Minute))
}

func TestMemoryCacheConcurrentIncrement(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryCacheService().(*memoryCacheService)
	defer svc.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Increment(ctx, "counter")
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "50", got)
}
