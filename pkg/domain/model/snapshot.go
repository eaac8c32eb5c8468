/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:30:16
 * @LastEditTime: 2025-09-02 10:31:02
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Snapshot 是 cms_snapshots 表中的一行，Payload 为序列化后的 CmsData
type Snapshot struct {
	SiteID    string    `json:"site_id"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
