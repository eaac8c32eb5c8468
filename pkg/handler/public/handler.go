/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-09-18 17:40:26
 * @LastEditors: 安知鱼
 */
package public_handler

import (
	"log"
	"net/http"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/parser"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/response"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/cms"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/gallery"

	"github.com/gin-gonic/gin"
)

// PublicHandler 封装了所有公开接口的控制器方法。
// 它只读取文档，存储异常时加载器会返回默认内容，因此这里不会出现 5xx。
type PublicHandler struct {
	loader cms.DocumentLoader
}

// NewPublicHandler 是 PublicHandler 的构造函数
func NewPublicHandler(loader cms.DocumentLoader) *PublicHandler {
	return &PublicHandler{loader: loader}
}

type artworkDetail struct {
	Artwork  model.Artwork   `json:"artwork"`
	SEO      model.SEO       `json:"seo"`
	Related  []model.Artwork `json:"related"`
	Previous *model.Artwork  `json:"previous"`
	Next     *model.Artwork  `json:"next"`
}

// GetSite 获取站点身份信息，只返回可见的社交链接
// @Summary      获取站点信息
// @Tags         公共接口
// @Produce      json
// @Router       /public/site [get]
func (h *PublicHandler) GetSite(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	identity := doc.SiteIdentity

	visible := make([]model.SocialLink, 0, len(identity.SocialLinks))
	for _, link := range identity.SocialLinks {
		if link.IsVisible {
			visible = append(visible, link)
		}
	}
	identity.SocialLinks = visible

	response.Success(c, gin.H{
		"version":      doc.Version,
		"siteIdentity": identity,
	}, "ok")
}

// GetHome 获取首页内容，区块引用已展开
// @Summary      获取首页
// @Tags         公共接口
// @Produce      json
// @Router       /public/home [get]
func (h *PublicHandler) GetHome(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	response.Success(c, gin.H{
		"hero":     doc.Homepage.Hero,
		"about":    doc.Homepage.About,
		"sections": gallery.EnabledSections(doc),
	}, "ok")
}

// GetAbout 获取关于页，正文同时返回渲染后的 HTML
// @Summary      获取关于页
// @Tags         公共接口
// @Produce      json
// @Router       /public/about [get]
func (h *PublicHandler) GetAbout(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	about := doc.Homepage.About

	contentHTML, err := parser.MarkdownToHTML(about.Content)
	if err != nil {
		log.Printf("[PublicHandler] 渲染关于页正文失败: %v", err)
		contentHTML = ""
	}
	response.Success(c, gin.H{
		"about":       about,
		"contentHtml": contentHTML,
	}, "ok")
}

// ListArtworks 获取已发布作品
// @Summary      获取作品列表
// @Tags         公共接口
// @Produce      json
// @Param        kind      query  string  false  "painting | abstract"
// @Param        category  query  string  false  "分类 slug，toate 表示全部"
// @Router       /public/artworks [get]
func (h *PublicHandler) ListArtworks(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	artworks := gallery.ArtworksByKind(gallery.PublishedArtworks(doc), c.Query("kind"))
	filters := gallery.CategoryFilters(artworks)

	category := c.Query("category")
	known := false
	for _, filter := range filters {
		if filter.Slug == category {
			known = true
			break
		}
	}
	// 未知的分类回退到全部
	if !known {
		category = ""
	}

	items := gallery.FilterByCategory(artworks, category)
	response.Success(c, gin.H{
		"items":    items,
		"total":    len(items),
		"filters":  filters,
		"category": category,
	}, "ok")
}

// GetArtwork 获取作品详情，包括相关作品与前后作品
// @Summary      获取作品详情
// @Tags         公共接口
// @Produce      json
// @Param        slug  path  string  true  "作品 slug"
// @Failure      404  {object}  response.Response  "作品不存在"
// @Router       /public/artworks/{slug} [get]
func (h *PublicHandler) GetArtwork(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	published := gallery.PublishedArtworks(doc)

	art, ok := gallery.FindArtworkBySlug(published, c.Param("slug"))
	if !ok {
		response.Fail(c, http.StatusNotFound, "Lucrarea nu a fost găsită")
		return
	}

	prev, next := gallery.AdjacentArtworks(published, art.ID)
	response.Success(c, artworkDetail{
		Artwork:  art,
		SEO:      gallery.SEOFor(art),
		Related:  gallery.RelatedArtworks(art, published, gallery.DefaultRelatedLimit),
		Previous: prev,
		Next:     next,
	}, "ok")
}

// ListExpositions 获取展览列表，按开始日期倒序
// @Summary      获取展览列表
// @Tags         公共接口
// @Produce      json
// @Router       /public/expositions [get]
func (h *PublicHandler) ListExpositions(c *gin.Context) {
	doc := h.loader.Load(c.Request.Context())
	expositions := gallery.SortedExpositions(doc.Expositions)
	response.Success(c, gin.H{
		"items": expositions,
		"total": len(expositions),
	}, "ok")
}
