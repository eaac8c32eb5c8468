/*
 * @Description: 联系表单留言
 * @Author: 安知鱼
 * @Date: 2025-09-10 15:02:44
 * @LastEditTime: 2025-09-11 09:20:13
 * @LastEditors: 安知鱼
 */
package model

import "time"

// 留言处理状态
const (
	ContactStatusUnread   = "unread"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactSubmission 是核心业务模型
type ContactSubmission struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Regarding string    `json:"regarding"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateContactSubmissionRequest 是公开联系表单的请求体
type CreateContactSubmissionRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"max=50"`
	Regarding string `json:"regarding" binding:"required,max=255"`
	Message   string `json:"message" binding:"required,min=10"`
}

// UpdateContactSubmissionRequest 是后台更新留言状态的请求体
type UpdateContactSubmissionRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=unread read replied archived"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}
