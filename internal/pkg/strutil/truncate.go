/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 16:10:53
 * @LastEditTime: 2025-09-12 10:31:40
 * @LastEditors: 安知鱼
 */
package strutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate 安全地将UTF-8字符串截断到指定的长度（含省略号），优先在空白处断开。
func Truncate(s string, maxLength int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:maxLength-1])
	// 断点离末尾不远时退回到上一个空格，避免截断单词
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 && utf8.RuneCountInString(cut[idx:]) <= 20 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
