/*
 * @Description: 联系表单接口
 * @Author: 安知鱼
 * @Date: 2025-09-10 16:22:51
 * @LastEditTime: 2025-09-17 10:12:30
 * @LastEditors: 安知鱼
 */
package contact_handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/contact"
)

// Handler 联系表单处理器
type Handler struct {
	svc contact.Service
}

// NewHandler 创建联系表单处理器
func NewHandler(svc contact.Service) *Handler {
	return &Handler{svc: svc}
}

// Submit 提交联系表单
// @Summary      提交联系表单
// @Tags         公共接口
// @Accept       json
// @Produce      json
// @Param        body  body  model.CreateContactSubmissionRequest  true  "留言内容"
// @Router       /public/contact [post]
func (h *Handler) Submit(c *gin.Context) {
	var req model.CreateContactSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Verifică datele din formular.")
		return
	}

	submission, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, constant.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, "Verifică datele din formular.")
		case errors.Is(err, contact.ErrTooManySubmissions):
			response.Fail(c, http.StatusTooManyRequests, "Prea multe mesaje trimise. Încearcă din nou mai târziu.")
		default:
			log.Printf("[ContactHandler] 保存留言失败: %v", err)
			response.Fail(c, http.StatusInternalServerError, "Mesajul nu a putut fi trimis.")
		}
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, gin.H{"id": submission.PublicID}, "Mesajul a fost trimis.")
}

// List 分页获取留言
// @Summary      获取留言列表
// @Tags         留言管理
// @Security     BearerAuth
// @Param        page      query  int  false  "页码"  default(1)
// @Param        pageSize  query  int  false  "每页数量"  default(20)
// @Router       /admin/contact-submissions [get]
func (h *Handler) List(c *gin.Context) {
	var query repository.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Fail(c, http.StatusBadRequest, "Parametri invalizi")
		return
	}

	result, err := h.svc.List(c.Request.Context(), query)
	if err != nil {
		log.Printf("[ContactHandler] 获取留言列表失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "Mesajele nu au putut fi încărcate.")
		return
	}
	response.Success(c, result, "ok")
}

// Get 获取单条留言
// @Summary      获取留言详情
// @Tags         留言管理
// @Security     BearerAuth
// @Param        id  path  string  true  "留言公开 ID"
// @Router       /admin/contact-submissions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	submission, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Mesajul nu a fost găsit.")
			return
		}
		log.Printf("[ContactHandler] 获取留言失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "Mesajul nu a putut fi încărcat.")
		return
	}
	response.Success(c, submission, "ok")
}

// Update 修改留言状态或备注
// @Summary      更新留言
// @Tags         留言管理
// @Security     BearerAuth
// @Param        id    path  string  true  "留言公开 ID"
// @Param        body  body  model.UpdateContactSubmissionRequest  true  "修改内容"
// @Router       /admin/contact-submissions/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateContactSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Date invalide")
		return
	}
	if req.Status == nil && req.Notes == nil {
		response.Fail(c, http.StatusBadRequest, "Nimic de actualizat")
		return
	}

	submission, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Mesajul nu a fost găsit.")
			return
		}
		log.Printf("[ContactHandler] 更新留言失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "Mesajul nu a putut fi actualizat.")
		return
	}
	response.Success(c, submission, "Mesajul a fost actualizat.")
}
