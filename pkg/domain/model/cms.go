/*
 * @Description: CMS 站点文档模型，整个站点内容以单一 JSON 文档保存
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:12:40
 * @LastEditTime: 2025-09-18 16:40:05
 * @LastEditors: 安知鱼
 */
package model

import (
	"encoding/json"
	"fmt"
)

// 作品状态
const (
	ArtworkStatusDraft     = "draft"
	ArtworkStatusPublished = "published"
	ArtworkStatusArchived  = "archived"
)

// 作品可见性
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// 展览状态
const (
	ExpositionStatusUpcoming = "upcoming"
	ExpositionStatusCurrent  = "current"
	ExpositionStatusArchived = "archived"
)

// 首页区块类型
const (
	SectionTypeFeaturedArt = "featured-art"
	SectionTypeStatement   = "statement"
	SectionTypeCTA         = "cta"
	SectionTypeExpositions = "expositions"
	SectionTypeCustom      = "custom"
)

// 相关作品模式
const (
	RelatedModeAuto   = "auto"
	RelatedModeManual = "manual"
)

// CmsData 是整个站点的内容快照
type CmsData struct {
	Version      string          `json:"version"`
	SiteIdentity SiteIdentity    `json:"siteIdentity"`
	Homepage     HomepageContent `json:"homepage"`
	ArtLibrary   ArtLibrary      `json:"artLibrary"`
	Expositions  []Exposition    `json:"expositions" validate:"dive"`
}

// Clone 返回文档的深拷贝，调用方可以随意修改而不影响原文档。
func (d *CmsData) Clone() *CmsData {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		panic(fmt.Sprintf("model: 序列化 CmsData 失败: %v", err))
	}
	var out CmsData
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("model: 反序列化 CmsData 失败: %v", err))
	}
	return &out
}

// MediaAsset 指向外部托管的图片或视频，只保存 URL
type MediaAsset struct {
	ID            string    `json:"id" validate:"required"`
	Type          string    `json:"type" validate:"oneof=image video"`
	Src           string    `json:"src" validate:"required"`
	Alt           string    `json:"alt"`
	Width         *int      `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height        *int      `json:"height,omitempty" validate:"omitempty,gt=0"`
	FocalPoint    []float64 `json:"focalPoint,omitempty" validate:"omitnil,len=2"`
	DominantColor string    `json:"dominantColor,omitempty"`
	BlurDataURL   string    `json:"blurDataUrl,omitempty"`
	Credits       string    `json:"credits,omitempty"`
}

// Logo 在媒体资源的基础上增加了字标信息
type Logo struct {
	ID            string    `json:"id" validate:"required"`
	Type          string    `json:"type" validate:"oneof=image video"`
	Src           string    `json:"src" validate:"required"`
	Alt           string    `json:"alt"`
	Width         *int      `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height        *int      `json:"height,omitempty" validate:"omitempty,gt=0"`
	FocalPoint    []float64 `json:"focalPoint,omitempty" validate:"omitnil,len=2"`
	DominantColor string    `json:"dominantColor,omitempty"`
	BlurDataURL   string    `json:"blurDataUrl,omitempty"`
	Credits       string    `json:"credits,omitempty"`
	LockupText    string    `json:"lockupText"`
	Tagline       string    `json:"tagline"`
	Orientation   string    `json:"orientation" validate:"oneof=horizontal stacked"`
}

// NavigationItem 是导航树节点，Children 与自身同构，深度不限
type NavigationItem struct {
	ID          string           `json:"id" validate:"required"`
	Label       string           `json:"label" validate:"required"`
	Href        string           `json:"href" validate:"required"`
	Description string           `json:"description,omitempty"`
	IsExternal  bool             `json:"isExternal"`
	Highlight   bool             `json:"highlight"`
	Children    []NavigationItem `json:"children" validate:"dive"`
}

type SocialLink struct {
	ID        string `json:"id" validate:"required"`
	Platform  string `json:"platform" validate:"required"`
	Label     string `json:"label" validate:"required"`
	URL       string `json:"url" validate:"required"`
	Handle    string `json:"handle,omitempty"`
	IsVisible bool   `json:"isVisible"`
}

type ContactChannel struct {
	ID    string `json:"id" validate:"required"`
	Type  string `json:"type" validate:"oneof=email phone location social other"`
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
	Note  string `json:"note,omitempty"`
}

type StudioHour struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type ContactInfo struct {
	Headline    string           `json:"headline"`
	Subheading  string           `json:"subheading"`
	Channels    []ContactChannel `json:"channels" validate:"dive"`
	StudioHours []StudioHour     `json:"studioHours" validate:"dive"`
	MapEmbedURL string           `json:"mapEmbedUrl,omitempty"`
}

type SiteIdentity struct {
	Logo        Logo             `json:"logo"`
	Navigation  []NavigationItem `json:"navigation" validate:"dive"`
	SocialLinks []SocialLink     `json:"socialLinks" validate:"dive"`
	Contact     ContactInfo      `json:"contact"`
}

type CallToAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Hero struct {
	ID           string        `json:"id" validate:"required"`
	Eyebrow      string        `json:"eyebrow"`
	Title        string        `json:"title" validate:"required"`
	Description  string        `json:"description"`
	CtaPrimary   CallToAction  `json:"ctaPrimary"`
	CtaSecondary *CallToAction `json:"ctaSecondary,omitempty" validate:"omitempty"`
	Background   MediaAsset    `json:"background"`
}

type AboutBlock struct {
	ID    string      `json:"id" validate:"required"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Media *MediaAsset `json:"media,omitempty" validate:"omitempty"`
}

type AboutContent struct {
	Headline string       `json:"headline"`
	Summary  string       `json:"summary"`
	Content  string       `json:"content"`
	Image    *MediaAsset  `json:"image,omitempty" validate:"omitempty"`
	Blocks   []AboutBlock `json:"blocks" validate:"dive"`
}

type HomepageSection struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type" validate:"oneof=featured-art statement cta expositions custom"`
	Layout        string   `json:"layout" validate:"oneof=full split grid carousel"`
	Enabled       bool     `json:"enabled"`
	ReferenceIDs  []string `json:"referenceIds"`
	ManualContent string   `json:"manualContent,omitempty"`
}

type HomepageContent struct {
	Hero     Hero              `json:"hero"`
	About    AboutContent      `json:"about"`
	Sections []HomepageSection `json:"sections" validate:"dive"`
}

type Dimensions struct {
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Depth  *float64 `json:"depth,omitempty"`
	Unit   string   `json:"unit" validate:"oneof=cm in"`
}

type Pricing struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	IsAvailable        bool    `json:"isAvailable"`
	AvailabilityStatus string  `json:"availabilityStatus" validate:"oneof=available on_command sold"`
	Notes              string  `json:"notes,omitempty"`
}

type GalleryImage struct {
	ID      string     `json:"id" validate:"required"`
	Asset   MediaAsset `json:"asset"`
	Caption string     `json:"caption"`
	IsCover bool       `json:"isCover"`
}

type QRCode struct {
	ID           string `json:"id" validate:"required"`
	Label        string `json:"label"`
	TargetURL    string `json:"targetUrl"`
	IncludePrice bool   `json:"includePrice"`
	CallToAction string `json:"callToAction"`
	PrintSize    string `json:"printSize" validate:"oneof=50mm 80mm 100mm"`
}

type RelatedArtworks struct {
	Mode      string   `json:"mode" validate:"oneof=auto manual"`
	AutoTags  []string `json:"autoTags"`
	ManualIDs []string `json:"manualIds"`
}

type SEO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	CanonicalURL string   `json:"canonicalUrl,omitempty"`
}

// Artwork 作品。Slug 在作品集合中唯一，Visibility 由后台根据 Status 推导
type Artwork struct {
	ID         string          `json:"id" validate:"required"`
	Slug       string          `json:"slug" validate:"required"`
	Title      string          `json:"title" validate:"required"`
	Summary    string          `json:"summary"`
	Collection string          `json:"collection"`
	Category   string          `json:"category"`
	Style      string          `json:"style"`
	Status     string          `json:"status" validate:"oneof=draft published archived"`
	Visibility string          `json:"visibility" validate:"oneof=public private"`
	Year       string          `json:"year"`
	Materials  []string        `json:"materials"`
	Palette    []string        `json:"palette"`
	Dimensions Dimensions      `json:"dimensions"`
	Pricing    *Pricing        `json:"pricing,omitempty" validate:"omitempty"`
	HeroImage  MediaAsset      `json:"heroImage"`
	Gallery    []GalleryImage  `json:"gallery" validate:"dive"`
	QRCode     QRCode          `json:"qrCode"`
	Related    RelatedArtworks `json:"related"`
	SEO        SEO             `json:"seo"`
}

// IsPublished 判断作品是否可以出现在公开页面
func (a Artwork) IsPublished() bool {
	return a.Status == ArtworkStatusPublished && a.Visibility == VisibilityPublic
}

type ArtLibrary struct {
	Artworks []Artwork `json:"artworks" validate:"dive"`
}

type ExpositionLink struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Exposition struct {
	ID                 string           `json:"id" validate:"required"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug"`
	Venue              string           `json:"venue"`
	Location           string           `json:"location"`
	StartDate          string           `json:"startDate"`
	EndDate            string           `json:"endDate"`
	Description        string           `json:"description"`
	FeaturedArtworkIDs []string         `json:"featuredArtworkIds"`
	HeroImage          *MediaAsset      `json:"heroImage,omitempty" validate:"omitempty"`
	Links              []ExpositionLink `json:"links" validate:"dive"`
	Status             string           `json:"status" validate:"oneof=upcoming current archived"`
}
