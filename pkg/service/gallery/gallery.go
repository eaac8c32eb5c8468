/*
 * @Description: 公开页面使用的只读投影：已发布作品、相关作品、首页区块与展览
 * @Author: 安知鱼
 * @Date: 2025-09-10 15:33:08
 * @LastEditTime: 2025-09-18 17:21:44
 * @LastEditors: 安知鱼
 */
package gallery

import (
	"sort"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/strutil"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

// 作品分类页面
const (
	KindPainting = "painting"
	KindAbstract = "abstract"
)

const (
	// DefaultRelatedLimit 详情页展示的相关作品数量
	DefaultRelatedLimit = 3
	// featuredFallbackCount 精选区块没有指定作品时展示的数量
	featuredFallbackCount = 6
	fallbackFilterLabel   = "Colecție"
	expositionDateLayout  = "2006-01-02"
)

// CategoryFilter 是分类页面上的一个筛选项
type CategoryFilter struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ResolvedSection 是展开引用后的首页区块
type ResolvedSection struct {
	model.HomepageSection
	Artworks    []model.Artwork    `json:"artworks,omitempty"`
	Expositions []model.Exposition `json:"expositions,omitempty"`
}

// PublishedArtworks 返回已发布且公开的作品，保持原有顺序
func PublishedArtworks(doc *model.CmsData) []model.Artwork {
	out := make([]model.Artwork, 0, len(doc.ArtLibrary.Artworks))
	for _, art := range doc.ArtLibrary.Artworks {
		if art.IsPublished() {
			out = append(out, art)
		}
	}
	return out
}

// FindArtworkBySlug 在给定集合中按 slug 查找作品
func FindArtworkBySlug(artworks []model.Artwork, slug string) (model.Artwork, bool) {
	for _, art := range artworks {
		if art.Slug == slug {
			return art, true
		}
	}
	return model.Artwork{}, false
}

func artworksByIDs(ids []string, pool []model.Artwork) []model.Artwork {
	index := make(map[string]model.Artwork, len(pool))
	for _, art := range pool {
		index[art.ID] = art
	}
	out := make([]model.Artwork, 0, len(ids))
	for _, id := range ids {
		// 引用可能已失效，直接跳过
		if art, ok := index[id]; ok {
			out = append(out, art)
		}
	}
	return out
}

// RelatedArtworks 解析作品的相关作品。
// 手动模式按 manualIds 的顺序返回；自动模式匹配相同的系列或风格，以及包含自动标签的系列/风格。
func RelatedArtworks(art model.Artwork, pool []model.Artwork, limit int) []model.Artwork {
	if art.Related.Mode == model.RelatedModeManual && len(art.Related.ManualIDs) > 0 {
		related := artworksByIDs(art.Related.ManualIDs, pool)
		if limit > 0 && len(related) > limit {
			related = related[:limit]
		}
		return related
	}

	tags := make([]string, 0, len(art.Related.AutoTags))
	for _, tag := range art.Related.AutoTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	out := make([]model.Artwork, 0, limit)
	for _, candidate := range pool {
		if candidate.ID == art.ID {
			continue
		}
		if !isAutoRelated(art, candidate, tags) {
			continue
		}
		out = append(out, candidate)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func isAutoRelated(art, candidate model.Artwork, tags []string) bool {
	if art.Collection != "" && candidate.Collection == art.Collection {
		return true
	}
	if art.Style != "" && candidate.Style == art.Style {
		return true
	}
	collection := strings.ToLower(candidate.Collection)
	style := strings.ToLower(candidate.Style)
	for _, tag := range tags {
		if strings.Contains(collection, tag) || strings.Contains(style, tag) {
			return true
		}
	}
	return false
}

// AdjacentArtworks 返回作品在集合中的上一件与下一件
func AdjacentArtworks(artworks []model.Artwork, id string) (prev, next *model.Artwork) {
	for i := range artworks {
		if artworks[i].ID != id {
			continue
		}
		if i > 0 {
			p := artworks[i-1]
			prev = &p
		}
		if i+1 < len(artworks) {
			n := artworks[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}

// ResolveSection 展开区块引用的作品或展览
func ResolveSection(section model.HomepageSection, artworks []model.Artwork, expositions []model.Exposition) ResolvedSection {
	resolved := ResolvedSection{HomepageSection: section}
	switch section.Type {
	case model.SectionTypeFeaturedArt:
		if len(section.ReferenceIDs) > 0 {
			resolved.Artworks = artworksByIDs(section.ReferenceIDs, artworks)
		} else {
			n := min(len(artworks), featuredFallbackCount)
			resolved.Artworks = append([]model.Artwork(nil), artworks[:n]...)
		}
	case model.SectionTypeExpositions:
		if len(section.ReferenceIDs) > 0 {
			index := make(map[string]model.Exposition, len(expositions))
			for _, expo := range expositions {
				index[expo.ID] = expo
			}
			for _, id := range section.ReferenceIDs {
				if expo, ok := index[id]; ok {
					resolved.Expositions = append(resolved.Expositions, expo)
				}
			}
		} else {
			resolved.Expositions = append([]model.Exposition(nil), expositions...)
		}
	}
	return resolved
}

// EnabledSections 返回首页中启用的区块，引用只在已发布作品中解析
func EnabledSections(doc *model.CmsData) []ResolvedSection {
	published := PublishedArtworks(doc)
	out := make([]ResolvedSection, 0, len(doc.Homepage.Sections))
	for _, section := range doc.Homepage.Sections {
		if !section.Enabled {
			continue
		}
		out = append(out, ResolveSection(section, published, doc.Expositions))
	}
	return out
}

// SortedExpositions 按开始日期倒序返回展览
func SortedExpositions(expositions []model.Exposition) []model.Exposition {
	out := append([]model.Exposition(nil), expositions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate > out[j].StartDate
	})
	return out
}

// ExpositionStatusOn 根据日期推算展览状态。日期无法解析时保持原状态。
func ExpositionStatusOn(expo model.Exposition, day time.Time) string {
	start, err := time.Parse(expositionDateLayout, expo.StartDate)
	if err != nil {
		return expo.Status
	}
	today := day.Format(expositionDateLayout)
	if today < start.Format(expositionDateLayout) {
		return model.ExpositionStatusUpcoming
	}
	if expo.EndDate == "" {
		return model.ExpositionStatusCurrent
	}
	end, err := time.Parse(expositionDateLayout, expo.EndDate)
	if err != nil {
		return expo.Status
	}
	if today > end.Format(expositionDateLayout) {
		return model.ExpositionStatusArchived
	}
	return model.ExpositionStatusCurrent
}

// ArtworksByKind 按页面类型划分作品，分类名包含 "abstract" 的归入抽象作品
func ArtworksByKind(artworks []model.Artwork, kind string) []model.Artwork {
	if kind == "" {
		return artworks
	}
	out := make([]model.Artwork, 0, len(artworks))
	for _, art := range artworks {
		abstract := strings.Contains(strings.ToLower(art.Category), "abstract")
		if (kind == KindAbstract) == abstract {
			out = append(out, art)
		}
	}
	return out
}

func filterLabel(art model.Artwork) string {
	for _, label := range []string{art.Collection, art.Category, art.Style} {
		if label != "" {
			return label
		}
	}
	return fallbackFilterLabel
}

// CategoryFilters 根据作品的系列生成筛选项，按首次出现的顺序去重
func CategoryFilters(artworks []model.Artwork) []CategoryFilter {
	seen := make(map[string]bool)
	filters := make([]CategoryFilter, 0)
	for _, art := range artworks {
		label := filterLabel(art)
		slug := strutil.CategorySlug(label)
		if seen[slug] {
			continue
		}
		seen[slug] = true
		filters = append(filters, CategoryFilter{Slug: slug, Name: label})
	}
	return filters
}

// FilterByCategory 按筛选项过滤作品，空值或 "toate" 返回全部
func FilterByCategory(artworks []model.Artwork, category string) []model.Artwork {
	if category == "" || category == strutil.AllCategorySlug {
		return artworks
	}
	out := make([]model.Artwork, 0, len(artworks))
	for _, art := range artworks {
		if strutil.CategorySlug(filterLabel(art)) == category {
			out = append(out, art)
		}
	}
	return out
}

// SEOFor 返回作品的 SEO 信息，缺省时由标题与简介补齐
func SEOFor(art model.Artwork) model.SEO {
	seo := art.SEO
	if seo.Title == "" {
		seo.Title = art.Title
	}
	if seo.Description == "" {
		seo.Description = strutil.Truncate(art.Summary, 160)
	}
	if seo.Keywords == nil {
		seo.Keywords = []string{}
	}
	return seo
}
