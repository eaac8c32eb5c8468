/*
 * @Description: 联系表单留言数据操作的契约
 * @Author: 安知鱼
 * @Date: 2025-09-10 15:10:07
 * @LastEditTime: 2025-09-10 15:10:07
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

// ContactSubmissionUpdate 描述一次部分更新，nil 字段保持不变
type ContactSubmissionUpdate struct {
	Status *string
	// SetNotes 为 true 时写入 Notes，Notes 为 nil 表示清空
	SetNotes bool
	Notes    *string
}

type ContactSubmissionRepository interface {
	Create(ctx context.Context, submission *model.ContactSubmission) error
	FindByID(ctx context.Context, id uint) (*model.ContactSubmission, error)
	// List 按创建时间倒序返回
	List(ctx context.Context, query PageQuery) ([]*model.ContactSubmission, int64, error)
	Update(ctx context.Context, id uint, update ContactSubmissionUpdate) (*model.ContactSubmission, error)
}
