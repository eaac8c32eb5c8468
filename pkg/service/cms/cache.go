/*
 * @Description: 公开页面使用的带缓存加载器
 * @Author: 安知鱼
 * @Date: 2025-09-08 09:12:45
 * @LastEditTime: 2025-09-17 20:20:03
 * @LastEditors: 安知鱼
 */
package cms

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/utility"
)

// CacheKey 返回站点快照在缓存中的键
func CacheKey(siteID string) string {
	return "cms:snapshot:" + siteID
}

// CachedLoader 在 ServerLoader 之前加一层缓存，缓存失效由 CmsCacheListener 负责
type CachedLoader struct {
	loader *ServerLoader
	cache  utility.CacheService
	key    string
	ttl    time.Duration
}

// NewCachedLoader ttl <= 0 时不使用缓存
func NewCachedLoader(loader *ServerLoader, cache utility.CacheService, ttl time.Duration) *CachedLoader {
	return &CachedLoader{
		loader: loader,
		cache:  cache,
		key:    CacheKey(loader.siteID),
		ttl:    ttl,
	}
}

func (c *CachedLoader) Load(ctx context.Context) *model.CmsData {
	if c.cache == nil || c.ttl <= 0 {
		return c.loader.Load(ctx)
	}

	if raw, err := c.cache.Get(ctx, c.key); err != nil {
		log.Printf("[CachedLoader] 读取缓存失败: %v", err)
	} else if raw != "" {
		if doc, parseErr := schema.Parse([]byte(raw)); parseErr == nil {
			return doc
		}
		// 缓存内容损坏，直接回源
		_ = c.cache.Delete(ctx, c.key)
	}

	doc, fromStorage := c.loader.load(ctx)
	if !fromStorage {
		return doc
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	if err := c.cache.Set(ctx, c.key, string(payload), c.ttl); err != nil {
		log.Printf("[CachedLoader] 写入缓存失败: %v", err)
	}
	return doc
}

// Invalidate 删除缓存的快照
func (c *CachedLoader) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.key)
}
