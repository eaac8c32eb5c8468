/*
 * @Description: 后台 CMS 文档接口
 * @Author: 安知鱼
 * @Date: 2025-09-11 10:08:33
 * @LastEditTime: 2025-09-18 16:52:19
 * @LastEditors: 安知鱼
 */
package cms_handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/cms"
)

const resetTimeout = 30 * time.Second

// 路径中的分区名与文档分区的对应关系
var sectionsByPath = map[string]cms.Section{
	"site-identity": cms.SectionSiteIdentity,
	"homepage":      cms.SectionHomepage,
	"art-library":   cms.SectionArtLibrary,
	"expositions":   cms.SectionExpositions,
}

// Handler 后台 CMS 处理器
type Handler struct {
	store *cms.Store
}

// NewHandler 创建后台 CMS 处理器
func NewHandler(store *cms.Store) *Handler {
	return &Handler{store: store}
}

// GetState 返回完整的存储状态，包括保存状态
// @Summary      获取 CMS 状态
// @Tags         CMS 管理
// @Security     BearerAuth
// @Router       /admin/cms [get]
func (h *Handler) GetState(c *gin.Context) {
	response.Success(c, h.store.State(), "ok")
}

// Replace 用请求体中的完整文档替换当前文档
// @Summary      导入 CMS 文档
// @Tags         CMS 管理
// @Security     BearerAuth
// @Router       /admin/cms [put]
func (h *Handler) Replace(c *gin.Context) {
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	if err := h.store.ImportJSON(raw); err != nil {
		writeStoreError(c, err)
		return
	}
	response.Success(c, h.store.State(), "Conținutul a fost actualizat.")
}

// Reset 恢复默认内容
// @Summary      重置 CMS 文档
// @Tags         CMS 管理
// @Security     BearerAuth
// @Router       /admin/cms/reset [post]
func (h *Handler) Reset(c *gin.Context) {
	// 重置不随请求取消而中断
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), resetTimeout)
	defer cancel()

	if err := h.store.Reset(ctx); err != nil {
		log.Printf("[CmsHandler] 重置失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "Conținutul nu a putut fi resetat.")
		return
	}
	response.Success(c, h.store.State(), "Conținutul implicit a fost restaurat.")
}

// UpdateSection 替换一个分区，缺省字段按默认值补齐
// @Summary      更新 CMS 分区
// @Tags         CMS 管理
// @Security     BearerAuth
// @Param        section  path  string  true  "site-identity | homepage | art-library | expositions"
// @Router       /admin/cms/{section} [put]
func (h *Handler) UpdateSection(c *gin.Context) {
	section, ok := sectionsByPath[c.Param("section")]
	if !ok {
		response.Fail(c, http.StatusNotFound, "Secțiune necunoscută")
		return
	}
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	if err := h.store.UpdateSection(section, raw); err != nil {
		writeStoreError(c, err)
		return
	}
	response.Success(c, h.store.State(), "Modificările au fost salvate.")
}

// ListArtworks 返回全部作品，包括草稿与归档作品
// @Summary      获取全部作品
// @Tags         CMS 管理
// @Security     BearerAuth
// @Router       /admin/cms/artworks [get]
func (h *Handler) ListArtworks(c *gin.Context) {
	data := h.store.Data()
	if data == nil {
		writeStoreError(c, cms.ErrStoreLoading)
		return
	}
	response.Success(c, gin.H{
		"items": data.ArtLibrary.Artworks,
		"total": len(data.ArtLibrary.Artworks),
	}, "ok")
}

// CreateArtwork 新建一个草稿作品
// @Summary      新建作品
// @Tags         CMS 管理
// @Security     BearerAuth
// @Param        body  body  object{title=string}  false  "作品标题"
// @Router       /admin/cms/artworks [post]
func (h *Handler) CreateArtwork(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"max=255"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, http.StatusBadRequest, "Date invalide")
			return
		}
	}

	var created model.Artwork
	err := h.store.UpdateArtLibrary(func(lib model.ArtLibrary) model.ArtLibrary {
		created = cms.NewArtwork(req.Title, lib.Artworks)
		lib.Artworks = append(lib.Artworks, created)
		return lib
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, created, "Lucrarea a fost adăugată.")
}

// PatchArtwork 修改作品标题、slug 或状态
// @Summary      修改作品
// @Tags         CMS 管理
// @Security     BearerAuth
// @Param        id    path  string  true  "作品 ID"
// @Param        body  body  object{title=string,slug=string,status=string}  true  "修改内容"
// @Router       /admin/cms/artworks/{id} [patch]
func (h *Handler) PatchArtwork(c *gin.Context) {
	var req struct {
		Title  *string `json:"title" binding:"omitempty,max=255"`
		Slug   *string `json:"slug" binding:"omitempty,max=255"`
		Status *string `json:"status" binding:"omitempty,oneof=draft published archived"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Date invalide")
		return
	}

	id := c.Param("id")
	patch := cms.ArtworkPatch{Title: req.Title, Slug: req.Slug, Status: req.Status}
	var updated model.Artwork
	err := h.store.EditArtwork(id, func(lib model.ArtLibrary) model.ArtLibrary {
		lib.Artworks, _ = cms.ApplyArtworkPatch(lib.Artworks, id, patch)
		for _, art := range lib.Artworks {
			if art.ID == id {
				updated = art
			}
		}
		return lib
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.Success(c, updated, "Lucrarea a fost actualizată.")
}

// DeleteArtwork 删除作品，其他分区中的引用保持不变
// @Summary      删除作品
// @Tags         CMS 管理
// @Security     BearerAuth
// @Param        id  path  string  true  "作品 ID"
// @Router       /admin/cms/artworks/{id} [delete]
func (h *Handler) DeleteArtwork(c *gin.Context) {
	id := c.Param("id")
	err := h.store.EditArtwork(id, func(lib model.ArtLibrary) model.ArtLibrary {
		lib.Artworks, _ = cms.RemoveArtwork(lib.Artworks, id)
		return lib
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.Success(c, nil, "Lucrarea a fost ștearsă.")
}

// AddNavigationChild 在导航项下添加子链接，并重新生成同级子链接
// @Summary      添加导航子链接
// @Tags         CMS 管理
// @Security     BearerAuth
// @Param        id    path  string  true  "父级导航 ID"
// @Param        body  body  object{label=string}  true  "子链接名称"
// @Router       /admin/cms/navigation/{id}/children [post]
func (h *Handler) AddNavigationChild(c *gin.Context) {
	var req struct {
		Label string `json:"label" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Date invalide")
		return
	}

	data := h.store.Data()
	if data == nil {
		writeStoreError(c, cms.ErrStoreLoading)
		return
	}
	parentID := c.Param("id")
	if _, _, found := cms.AddNavigationChild(data.SiteIdentity.Navigation, parentID, req.Label); !found {
		response.Fail(c, http.StatusNotFound, "Elementul de navigare nu a fost găsit.")
		return
	}

	var child model.NavigationItem
	err := h.store.UpdateSiteIdentity(func(identity model.SiteIdentity) model.SiteIdentity {
		nav, created, _ := cms.AddNavigationChild(identity.Navigation, parentID, req.Label)
		identity.Navigation = cms.NormalizeChildLinks(nav)
		// 第一层子链接会被重新生成，返回最终写入的链接
		if created != nil {
			if found := findNavigation(identity.Navigation, created.ID); found != nil {
				child = *found
			}
		}
		return identity
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, child, "Link-ul a fost adăugat.")
}

func findNavigation(items []model.NavigationItem, id string) *model.NavigationItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
		if found := findNavigation(items[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

func readJSONBody(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		response.Fail(c, http.StatusBadRequest, "Corpul cererii trebuie să fie JSON valid.")
		return nil, false
	}
	return raw, true
}

// writeStoreError 把存储返回的错误映射为 HTTP 响应
func writeStoreError(c *gin.Context, err error) {
	if verr, ok := schema.AsValidationError(err); ok {
		response.FailWithData(c, http.StatusBadRequest, "Datele nu sunt valide.", gin.H{"issues": verr.Issues})
		return
	}
	switch {
	case errors.Is(err, cms.ErrStoreUnavailable):
		response.Fail(c, http.StatusConflict, "Conținutul este într-o stare de eroare. Resetează sau importă un document valid.")
	case errors.Is(err, cms.ErrStoreLoading):
		response.Fail(c, http.StatusServiceUnavailable, "Conținutul se încarcă. Încearcă din nou.")
	case errors.Is(err, cms.ErrUnknownSection):
		response.Fail(c, http.StatusNotFound, "Secțiune necunoscută")
	case errors.Is(err, cms.ErrArtworkNotFound):
		response.Fail(c, http.StatusNotFound, "Lucrarea nu a fost găsită.")
	default:
		log.Printf("[CmsHandler] 修改失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "Nu s-au putut salva modificările.")
	}
}
