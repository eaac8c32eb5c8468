/*
 * @Description: slug 生成，去除变音符号后只保留小写字母与数字
 * @Author: 安知鱼
 * @Date: 2025-09-04 17:45:02
 * @LastEditTime: 2025-09-04 18:10:44
 * @LastEditors: 安知鱼
 */
package strutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AllCategorySlug 是 "全部" 分类使用的 slug
const AllCategorySlug = "toate"

// StripDiacritics 去除字符串中的变音符号，例如 "Iarnă în Carpați" -> "Iarna in Carpati"
func StripDiacritics(s string) string {
	// transform.Chain 有状态，不能在 goroutine 之间共享
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify 将任意文本转换为 URL 安全的 slug：小写、去除变音符号，
// 连续的非字母数字字符合并为一个连字符，首尾不保留连字符。
// 没有可用字符时返回空字符串。
func Slugify(s string) string {
	lowered := strings.ToLower(StripDiacritics(s))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingHyphen := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// CategorySlug 与 Slugify 相同，但结果为空时回退到 AllCategorySlug
func CategorySlug(s string) string {
	if slug := Slugify(s); slug != "" {
		return slug
	}
	return AllCategorySlug
}
