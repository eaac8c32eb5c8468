/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-26 09:52:32
 * @LastEditTime: 2025-09-30 10:14:08
 * @LastEditors: 安知鱼
 */
package version

import (
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler 版本信息处理器
type Handler struct{}

// NewHandler 创建版本信息处理器实例
func NewHandler() *Handler {
	return &Handler{}
}

// GetVersion 获取版本信息
func (h *Handler) GetVersion(c *gin.Context) {
	response.Success(c, version.GetBuildInfo(), "ok")
}

// GetVersionString 获取版本字符串
func (h *Handler) GetVersionString(c *gin.Context) {
	response.Success(c, gin.H{"version": version.GetVersionString()}, "ok")
}
