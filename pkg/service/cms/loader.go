/*
 * @Description: 服务端首屏加载器，缺失快照时自动写入默认文档
 * @Author: 安知鱼
 * @Date: 2025-09-05 14:40:09
 * @LastEditTime: 2025-09-17 20:15:51
 * @LastEditors: 安知鱼
 */
package cms

import (
	"context"
	"errors"
	"log"

	"github.com/anzhiyu-c/anheyu-atelier/internal/contentdef"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

// DocumentLoader 是只读取文档的组件所依赖的接口，实现不会返回错误
type DocumentLoader interface {
	Load(ctx context.Context) *model.CmsData
}

// ServerLoader 在请求范围内一次性读取文档。
// 多个请求同时播种时依赖按站点 ID 的 upsert，无需额外加锁。
type ServerLoader struct {
	snapshots repository.SnapshotRepository
	siteID    string
}

func NewServerLoader(snapshots repository.SnapshotRepository, siteID string) *ServerLoader {
	return &ServerLoader{snapshots: snapshots, siteID: siteID}
}

// Load 返回当前文档，任何失败都退回默认文档
func (l *ServerLoader) Load(ctx context.Context) *model.CmsData {
	doc, _ := l.load(ctx)
	return doc
}

// load 的第二个返回值表示结果是否来自存储（包括成功的自动播种）。
// 兜底的默认文档不应被缓存。
func (l *ServerLoader) load(ctx context.Context) (*model.CmsData, bool) {
	snap, err := l.snapshots.FindBySiteID(ctx, l.siteID)
	switch {
	case err == nil:
		doc, parseErr := schema.Parse(snap.Payload)
		if parseErr != nil {
			log.Printf("[ServerLoader] 站点 '%s' 快照解析失败，使用默认内容: %v", l.siteID, parseErr)
			return contentdef.Default(), false
		}
		return doc, true

	case errors.Is(err, constant.ErrNotFound):
		if seedErr := l.snapshots.Upsert(ctx, l.siteID, contentdef.Raw()); seedErr != nil {
			log.Printf("[ServerLoader] 写入站点 '%s' 默认快照失败: %v", l.siteID, seedErr)
			return contentdef.Default(), false
		}
		log.Printf("[ServerLoader] ✅ 已为站点 '%s' 写入默认快照", l.siteID)
		return contentdef.Default(), true

	default:
		log.Printf("[ServerLoader] 读取站点 '%s' 快照失败，使用默认内容: %v", l.siteID, err)
		return contentdef.Default(), false
	}
}
