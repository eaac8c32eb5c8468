/*
 * @Description: 文档保存或重置后清除公开页面使用的快照缓存
 * @Author: 安知鱼
 * @Date: 2025-09-08 10:05:37
 * @LastEditTime: 2025-09-17 20:31:52
 * @LastEditors: 安知鱼
 */
package listener

import (
	"context"
	"log"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
)

const invalidateTimeout = 5 * time.Second

// Invalidator 是能够清除快照缓存的组件，例如 cms.CachedLoader
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CmsCacheListener 监听 cms:saved 与 cms:reset 事件。
// 只在持久化成功后清除缓存，避免公开页面读到尚未写入存储的内容。
type CmsCacheListener struct {
	cache Invalidator
}

// NewCmsCacheListener 是 CmsCacheListener 的构造函数，并完成事件订阅
func NewCmsCacheListener(eventBus *event.EventBus, cache Invalidator) *CmsCacheListener {
	l := &CmsCacheListener{cache: cache}
	eventBus.Subscribe(event.CmsSaved, l.handle)
	eventBus.Subscribe(event.CmsReset, l.handle)
	return l
}

func (l *CmsCacheListener) handle(payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	if err := l.cache.Invalidate(ctx); err != nil {
		log.Printf("[CmsCacheListener] 清除快照缓存失败: %v", err)
		return
	}
	log.Printf("[CmsCacheListener] 快照缓存已清除 (payload: %+v)", payload)
}
