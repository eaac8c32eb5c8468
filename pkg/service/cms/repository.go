/*
 * @Description: 站点快照仓储，负责按站点 ID 读取、保存与重置 CMS 文档
 * @Author: 安知鱼
 * @Date: 2025-09-05 10:21:14
 * @LastEditTime: 2025-09-18 11:02:37
 * @LastEditors: 安知鱼
 */
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-atelier/internal/contentdef"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

// ContentRepository 定义了 CMS 文档的持久化操作。
// 读路径容忍失败：存储不可用、记录缺失或内容损坏时都返回默认文档。
type ContentRepository interface {
	// Load 读取当前站点的文档，只有 ctx 被取消时才返回错误
	Load(ctx context.Context) (*model.CmsData, error)
	// Save 重新校验后按站点 ID 覆盖写入
	Save(ctx context.Context, doc *model.CmsData) error
	// Reset 写入默认文档并返回它。写入失败时仍返回默认文档，同时返回错误
	Reset(ctx context.Context) (*model.CmsData, error)
}

type contentRepository struct {
	snapshots repository.SnapshotRepository
	siteID    string
}

// NewContentRepository 创建一个绑定到指定站点 ID 的内容仓储
func NewContentRepository(snapshots repository.SnapshotRepository, siteID string) ContentRepository {
	return &contentRepository{
		snapshots: snapshots,
		siteID:    siteID,
	}
}

func (r *contentRepository) Load(ctx context.Context) (*model.CmsData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := r.snapshots.FindBySiteID(ctx, r.siteID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, constant.ErrNotFound) {
			log.Printf("[CmsRepository] 站点 '%s' 尚无快照，使用默认内容", r.siteID)
		} else {
			log.Printf("[CmsRepository] 读取站点 '%s' 快照失败，使用默认内容: %v", r.siteID, err)
		}
		return contentdef.Default(), nil
	}

	doc, err := schema.Parse(snap.Payload)
	if err != nil {
		log.Printf("[CmsRepository] 站点 '%s' 快照未通过校验，使用默认内容: %v", r.siteID, err)
		return contentdef.Default(), nil
	}
	return doc, nil
}

func (r *contentRepository) Save(ctx context.Context, doc *model.CmsData) error {
	valid, err := schema.Validate(doc)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(valid)
	if err != nil {
		return fmt.Errorf("序列化站点文档失败: %w", err)
	}
	if err := r.snapshots.Upsert(ctx, r.siteID, payload); err != nil {
		return fmt.Errorf("保存站点 '%s' 快照失败: %w", r.siteID, err)
	}
	return nil
}

func (r *contentRepository) Reset(ctx context.Context) (*model.CmsData, error) {
	doc := contentdef.Default()
	if err := r.snapshots.Upsert(ctx, r.siteID, contentdef.Raw()); err != nil {
		log.Printf("[CmsRepository] 重置站点 '%s' 快照失败: %v", r.siteID, err)
		return doc, fmt.Errorf("重置站点 '%s' 快照失败: %w", r.siteID, err)
	}
	return doc, nil
}
