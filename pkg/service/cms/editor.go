/*
 * @Description: 后台编辑辅助函数：作品 slug、状态与导航子链接
 * @Author: 安知鱼
 * @Date: 2025-09-09 11:27:50
 * @LastEditTime: 2025-09-18 10:05:12
 * @LastEditors: 安知鱼
 */
package cms

import (
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/strutil"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/idgen"
)

const (
	fallbackArtworkSlug   = "lucrare"
	defaultArtworkTitle   = "Lucrare nouă"
	defaultChildLabel     = "Sub-link"
	placeholderImageSrc   = "/placeholder.jpg"
	defaultQRCallToAction = "Scanează pentru detalii"
)

// 这两个页面通过 category 查询参数筛选作品
var categoryPages = map[string]bool{
	"/painting-art": true,
	"/abstract-art": true,
}

// ArtworkPatch 是后台对单个作品的局部修改，nil 字段保持不变
type ArtworkPatch struct {
	Title  *string `json:"title"`
	Slug   *string `json:"slug"`
	Status *string `json:"status"`
}

func titleSlug(title string) string {
	if base := strutil.Slugify(title); base != "" {
		return base
	}
	return fallbackArtworkSlug
}

// UniqueSlug 在 base 后追加 -2、-3… 直到不与其他作品冲突
func UniqueSlug(base, id string, artworks []model.Artwork) string {
	taken := func(candidate string) bool {
		for _, art := range artworks {
			if art.ID != id && art.Slug == candidate {
				return true
			}
		}
		return false
	}

	candidate := base
	for counter := 2; taken(candidate); counter++ {
		candidate = base + "-" + strconv.Itoa(counter)
	}
	return candidate
}

// EnsureSlug 根据标题生成在作品集合中唯一的 slug
func EnsureSlug(title, id string, artworks []model.Artwork) string {
	return UniqueSlug(titleSlug(title), id, artworks)
}

// IsTitleDerived 判断 slug 是否由标题自动生成（包括带数字后缀的去重结果）
func IsTitleDerived(slug, title string) bool {
	base := titleSlug(title)
	if slug == base {
		return true
	}
	suffix, ok := strings.CutPrefix(slug, base+"-")
	if !ok || suffix == "" {
		return false
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}

// DeriveVisibility 只有已发布的作品是公开的
func DeriveVisibility(status string) string {
	if status == model.ArtworkStatusPublished {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func indexOfArtwork(artworks []model.Artwork, id string) int {
	for i := range artworks {
		if artworks[i].ID == id {
			return i
		}
	}
	return -1
}

// RenameArtwork 修改作品标题。slug 仍由旧标题生成时随之更新，手动设置过的 slug 保持不变。
func RenameArtwork(artworks []model.Artwork, id, title string) ([]model.Artwork, bool) {
	idx := indexOfArtwork(artworks, id)
	if idx < 0 {
		return artworks, false
	}
	out := append([]model.Artwork(nil), artworks...)
	art := out[idx]
	derived := art.Slug == "" || IsTitleDerived(art.Slug, art.Title)
	art.Title = title
	if derived {
		art.Slug = EnsureSlug(title, id, out)
	}
	out[idx] = art
	return out, true
}

// SetArtworkSlug 手动设置 slug，输入会被规范化并去重。为空时回退到标题生成的 slug。
func SetArtworkSlug(artworks []model.Artwork, id, slug string) ([]model.Artwork, bool) {
	idx := indexOfArtwork(artworks, id)
	if idx < 0 {
		return artworks, false
	}
	out := append([]model.Artwork(nil), artworks...)
	base := strutil.Slugify(slug)
	if base == "" {
		base = titleSlug(out[idx].Title)
	}
	out[idx].Slug = UniqueSlug(base, id, out)
	return out, true
}

// SetArtworkStatus 修改状态并同步可见性
func SetArtworkStatus(artworks []model.Artwork, id, status string) ([]model.Artwork, bool) {
	idx := indexOfArtwork(artworks, id)
	if idx < 0 {
		return artworks, false
	}
	out := append([]model.Artwork(nil), artworks...)
	out[idx].Status = status
	out[idx].Visibility = DeriveVisibility(status)
	return out, true
}

// ApplyArtworkPatch 依次应用标题、slug 与状态的修改
func ApplyArtworkPatch(artworks []model.Artwork, id string, patch ArtworkPatch) ([]model.Artwork, bool) {
	if indexOfArtwork(artworks, id) < 0 {
		return artworks, false
	}
	out := artworks
	if patch.Title != nil {
		out, _ = RenameArtwork(out, id, strings.TrimSpace(*patch.Title))
	}
	if patch.Slug != nil {
		out, _ = SetArtworkSlug(out, id, *patch.Slug)
	}
	if patch.Status != nil {
		out, _ = SetArtworkStatus(out, id, *patch.Status)
	}
	return out, true
}

// NewArtwork 创建一个草稿作品，媒体与二维码使用占位内容
func NewArtwork(title string, artworks []model.Artwork) model.Artwork {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultArtworkTitle
	}
	id := idgen.CreateID("art")

	art := model.Artwork{
		ID:         id,
		Title:      title,
		Status:     model.ArtworkStatusDraft,
		Visibility: DeriveVisibility(model.ArtworkStatusDraft),
		Year:       strconv.Itoa(time.Now().Year()),
		Materials:  []string{},
		Palette:    []string{},
		Dimensions: model.Dimensions{Width: 50, Height: 50, Unit: "cm"},
		HeroImage: model.MediaAsset{
			ID:   idgen.CreateID("hero"),
			Type: "image",
			Src:  placeholderImageSrc,
			Alt:  "Lucrare",
		},
		Gallery: []model.GalleryImage{},
		QRCode: model.QRCode{
			ID:           idgen.CreateID("qr"),
			Label:        "QR",
			CallToAction: defaultQRCallToAction,
			PrintSize:    "80mm",
		},
		Related: model.RelatedArtworks{Mode: model.RelatedModeAuto, AutoTags: []string{}, ManualIDs: []string{}},
		SEO:     model.SEO{Keywords: []string{}},
	}
	art.Slug = EnsureSlug(title, id, artworks)
	return art
}

// RemoveArtwork 从集合中移除作品，引用它的区块与展览不会被修改
func RemoveArtwork(artworks []model.Artwork, id string) ([]model.Artwork, bool) {
	idx := indexOfArtwork(artworks, id)
	if idx < 0 {
		return artworks, false
	}
	out := make([]model.Artwork, 0, len(artworks)-1)
	out = append(out, artworks[:idx]...)
	return append(out, artworks[idx+1:]...), true
}

// BuildChildHref 根据父级链接与子项名称生成子链接
func BuildChildHref(parentHref, label string) string {
	slug := strutil.CategorySlug(label)
	switch {
	case parentHref == "" || parentHref == "/" || parentHref == "#":
		return "/" + slug
	case categoryPages[parentHref]:
		return parentHref + "?category=" + slug
	case strings.HasSuffix(parentHref, "/"):
		return parentHref + slug
	case strings.Contains(parentHref, "?"):
		if strings.Contains(parentHref, "category=") {
			return parentHref + "&" + slug
		}
		return parentHref + "&category=" + slug
	default:
		return parentHref + "/" + slug
	}
}

// AddNavigationChild 在 parentID 对应的节点下追加一个子链接，父节点可以位于任意层级
func AddNavigationChild(items []model.NavigationItem, parentID, label string) ([]model.NavigationItem, *model.NavigationItem, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultChildLabel
	}

	out := append([]model.NavigationItem(nil), items...)
	for i := range out {
		if out[i].ID == parentID {
			child := model.NavigationItem{
				ID:       idgen.CreateID("nav-child"),
				Label:    label,
				Href:     BuildChildHref(out[i].Href, label),
				Children: []model.NavigationItem{},
			}
			out[i].Children = append(append([]model.NavigationItem(nil), out[i].Children...), child)
			return out, &child, true
		}
		if children, child, ok := AddNavigationChild(out[i].Children, parentID, label); ok {
			out[i].Children = children
			return out, child, true
		}
	}
	return items, nil, false
}

// NormalizeChildLinks 根据父级链接与名称重新生成第一层子链接
func NormalizeChildLinks(items []model.NavigationItem) []model.NavigationItem {
	out := append([]model.NavigationItem(nil), items...)
	for i := range out {
		children := append([]model.NavigationItem(nil), out[i].Children...)
		for j := range children {
			children[j].Href = BuildChildHref(out[i].Href, children[j].Label)
		}
		out[i].Children = children
	}
	return out
}
