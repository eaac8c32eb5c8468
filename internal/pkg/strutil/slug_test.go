package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "空字符串", input: "", expected: ""},
		{name: "只有符号", input: "!!! ??", expected: ""},
		{name: "普通标题", input: "Luminous Atrium", expected: "luminous-atrium"},
		{name: "罗马尼亚语变音符号", input: "Iarnă în Carpați", expected: "iarna-in-carpati"},
		{name: "连续符号合并", input: "Statică & Compoziții", expected: "statica-compozitii"},
		{name: "首尾符号去除", input: "  -- Peisaj Nou --  ", expected: "peisaj-nou"},
		{name: "保留数字", input: "Serie 2024 / nr. 3", expected: "serie-2024-nr-3"},
		{name: "非拉丁字符被丢弃", input: "画 Art 画", expected: "art"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	for _, input := range []string{"Artă Fluidă", "Peisaje Urbane", "a--b"} {
		once := Slugify(input)
		assert.Equal(t, once, Slugify(once), input)
	}
}

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "peisaj", CategorySlug("Peisaj"))
	assert.Equal(t, AllCategorySlug, CategorySlug(""))
	assert.Equal(t, AllCategorySlug, CategorySlug("&&"))
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Iarna in Carpati", StripDiacritics("Iarnă în Carpați"))
	assert.Equal(t, "Sant", StripDiacritics("Șanț"))
}
