/*
 * @Description: 文档结构描述：必填键、默认值与嵌套关系
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:20:11
 * @LastEditTime: 2025-09-16 21:05:37
 * @LastEditors: 安知鱼
 */
package schema

import (
	"encoding/json"
	"fmt"
)

type fieldKind int

const (
	kindScalar fieldKind = iota
	kindObject
	kindArray
)

// field 描述对象中的一个键
type field struct {
	name     string
	kind     fieldKind
	required bool
	// hasDefault 为 true 时，键缺失会被写入 def
	hasDefault bool
	def        any
	// object 用于对象字段，elem 用于对象数组的元素，标量数组两者都为 nil
	object *shape
	elem   *shape
}

type shape struct {
	fields []field
}

func req(name string) field { return field{name: name, kind: kindScalar, required: true} }
func opt(name string) field { return field{name: name, kind: kindScalar} }
func def(name string, value any) field {
	return field{name: name, kind: kindScalar, hasDefault: true, def: value}
}
func obj(name string, s *shape) field {
	return field{name: name, kind: kindObject, required: true, object: s}
}
func optObj(name string, s *shape) field { return field{name: name, kind: kindObject, object: s} }
func arr(name string, elem *shape) field {
	return field{name: name, kind: kindArray, required: true, elem: elem}
}
func defArr(name string, elem *shape) field {
	return field{name: name, kind: kindArray, hasDefault: true, elem: elem}
}

func newShape(fields ...field) *shape { return &shape{fields: fields} }

var (
	mediaShape = newShape(
		req("id"), req("type"), req("src"), def("alt", ""),
		opt("width"), opt("height"), opt("focalPoint"),
		opt("dominantColor"), opt("blurDataUrl"), opt("credits"),
	)

	logoShape = newShape(append(append([]field{}, mediaShape.fields...),
		def("lockupText", ""), def("tagline", ""), def("orientation", "horizontal"),
	)...)

	// navigationShape 自引用，在 init 中填充
	navigationShape = &shape{}

	socialLinkShape = newShape(
		req("id"), req("platform"), req("label"), req("url"), opt("handle"), def("isVisible", true),
	)

	contactChannelShape = newShape(req("id"), req("type"), req("label"), req("value"), opt("note"))

	studioHourShape = newShape(req("id"), req("label"), req("value"))

	contactShape = newShape(
		def("headline", ""), def("subheading", ""),
		arr("channels", contactChannelShape), arr("studioHours", studioHourShape),
		opt("mapEmbedUrl"),
	)

	siteIdentityShape = newShape(
		obj("logo", logoShape),
		arr("navigation", navigationShape),
		arr("socialLinks", socialLinkShape),
		obj("contact", contactShape),
	)

	ctaShape = newShape(req("label"), req("href"))

	heroShape = newShape(
		req("id"), def("eyebrow", ""), req("title"), def("description", ""),
		obj("ctaPrimary", ctaShape), optObj("ctaSecondary", ctaShape),
		obj("background", mediaShape),
	)

	aboutBlockShape = newShape(req("id"), req("title"), req("body"), optObj("media", mediaShape))

	aboutShape = newShape(
		req("headline"), req("summary"), def("content", ""),
		optObj("image", mediaShape), defArr("blocks", aboutBlockShape),
	)

	sectionShape = newShape(
		req("id"), req("title"), def("description", ""), req("type"),
		def("layout", "full"), def("enabled", true), defArr("referenceIds", nil),
		opt("manualContent"),
	)

	homepageShape = newShape(
		obj("hero", heroShape), obj("about", aboutShape), arr("sections", sectionShape),
	)

	dimensionsShape = newShape(req("width"), req("height"), opt("depth"), def("unit", "cm"))

	pricingShape = newShape(
		req("amount"), def("currency", "EUR"), def("isAvailable", true),
		def("availabilityStatus", "available"), opt("notes"),
	)

	galleryImageShape = newShape(
		req("id"), obj("asset", mediaShape), def("caption", ""), def("isCover", false),
	)

	qrCodeShape = newShape(
		req("id"), req("label"), req("targetUrl"), def("includePrice", false),
		def("callToAction", "Scan pentru detalii"), def("printSize", "80mm"),
	)

	relatedShape = newShape(def("mode", "auto"), defArr("autoTags", nil), defArr("manualIds", nil))

	seoShape = newShape(
		def("title", ""), def("description", ""), defArr("keywords", nil), opt("canonicalUrl"),
	)

	artworkShape = newShape(
		req("id"), req("slug"), req("title"),
		def("summary", ""), def("collection", ""), def("category", ""), def("style", ""),
		def("status", "draft"), def("visibility", "public"), def("year", ""),
		defArr("materials", nil), defArr("palette", nil),
		obj("dimensions", dimensionsShape), optObj("pricing", pricingShape),
		obj("heroImage", mediaShape), arr("gallery", galleryImageShape),
		obj("qrCode", qrCodeShape), obj("related", relatedShape), obj("seo", seoShape),
	)

	artLibraryShape = newShape(arr("artworks", artworkShape))

	expositionLinkShape = newShape(req("id"), req("label"), req("url"))

	expositionShape = newShape(
		req("id"), req("title"), req("slug"), req("venue"), req("location"),
		req("startDate"), req("endDate"), req("description"),
		defArr("featuredArtworkIds", nil), optObj("heroImage", mediaShape),
		defArr("links", expositionLinkShape), def("status", "upcoming"),
	)

	documentShape = newShape(
		req("version"),
		obj("siteIdentity", siteIdentityShape),
		obj("homepage", homepageShape),
		obj("artLibrary", artLibraryShape),
		arr("expositions", expositionShape),
	)
)

func init() {
	navigationShape.fields = []field{
		req("id"), req("label"), req("href"), opt("description"),
		def("isExternal", false), def("highlight", false),
		defArr("children", navigationShape),
	}
}

// walk 按结构描述检查 v，就地写入默认值，并把缺失的必填键追加到 issues。
// 类型不符的值留给 checkKinds 报告。nullAsMissing 为 true 时 null 与缺失等价。
// 递归沿着数据本身进行，自引用的导航结构不会导致无限循环。
func (s *shape) walk(path string, v any, nullAsMissing bool, issues *[]Issue) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}

	for _, f := range s.fields {
		p := joinPath(path, f.name)
		val, present := m[f.name]
		if present && val == nil && !nullAsMissing {
			continue
		}

		if !present || val == nil {
			switch {
			// Go 的 nil 切片编码为 null，必填数组也按空数组处理
			case f.kind == kindArray && (f.hasDefault || present):
				m[f.name] = []any{}
			case f.hasDefault:
				m[f.name] = f.def
			case f.required:
				*issues = append(*issues, Issue{Path: p, Message: "Required"})
			default:
				delete(m, f.name)
			}
			continue
		}

		switch f.kind {
		case kindObject:
			f.object.walk(p, val, nullAsMissing, issues)
		case kindArray:
			items, ok := val.([]any)
			if !ok || f.elem == nil {
				continue
			}
			for i, item := range items {
				f.elem.walk(fmt.Sprintf("%s[%d]", p, i), item, nullAsMissing, issues)
			}
		}
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func expected(want string, got any) string {
	return fmt.Sprintf("Expected %s, received %s", want, describe(got))
}

// describe 返回 JSON 值的类型名
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
