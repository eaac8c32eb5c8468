/*
 * @Description: CMS 快照数据操作的契约
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:35:20
 * @LastEditTime: 2025-09-05 19:12:48
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

// SnapshotRepository 定义了 CMS 快照数据操作的契约，每个站点 ID 对应一行
type SnapshotRepository interface {
	// FindBySiteID 在行不存在时返回 constant.ErrNotFound
	FindBySiteID(ctx context.Context, siteID string) (*model.Snapshot, error)
	// Upsert 以 site_id 为冲突目标写入快照
	Upsert(ctx context.Context, siteID string, payload []byte) error
}
