package gallery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-atelier/internal/contentdef"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

func published(id, collection, style string) model.Artwork {
	return model.Artwork{
		ID:         id,
		Slug:       id,
		Title:      id,
		Collection: collection,
		Style:      style,
		Status:     model.ArtworkStatusPublished,
		Visibility: model.VisibilityPublic,
	}
}

func ids(artworks []model.Artwork) []string {
	out := make([]string, 0, len(artworks))
	for _, art := range artworks {
		out = append(out, art.ID)
	}
	return out
}

func TestPublishedArtworksExcludesDrafts(t *testing.T) {
	doc := contentdef.Default()
	draft := published("art-draft", "Peisaje Urbane", "")
	draft.Status = model.ArtworkStatusDraft
	draft.Visibility = model.VisibilityPrivate
	doc.ArtLibrary.Artworks = append(doc.ArtLibrary.Artworks, draft)

	got := ids(PublishedArtworks(doc))
	assert.NotContains(t, got, "art-draft")
	assert.NotContains(t, got, "art-textures")
	assert.Equal(t, []string{"art-luminous-atrium", "art-carpathian-winter"}, got)
}

func TestPublishedRequiresPublicVisibility(t *testing.T) {
	doc := &model.CmsData{}
	art := published("a", "", "")
	art.Visibility = model.VisibilityPrivate
	doc.ArtLibrary.Artworks = []model.Artwork{art}
	assert.Empty(t, PublishedArtworks(doc))
}

func TestRelatedArtworks(t *testing.T) {
	pool := []model.Artwork{
		published("A", "Munte", "Ulei"),
		published("B", "Munte", ""),
		published("C", "Mare", ""),
		published("D", "", "Ulei"),
		published("E", "Lumina de seara", ""),
	}

	t.Run("手动模式保持顺序并跳过失效引用", func(t *testing.T) {
		art := pool[0]
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeManual, ManualIDs: []string{"C", "missing", "B"}}
		assert.Equal(t, []string{"C", "B"}, ids(RelatedArtworks(art, pool, 3)))
	})

	t.Run("自动模式匹配系列与风格", func(t *testing.T) {
		art := pool[0]
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeAuto}
		assert.Equal(t, []string{"B", "D"}, ids(RelatedArtworks(art, pool, 3)))
	})

	t.Run("自动标签匹配系列名称", func(t *testing.T) {
		art := published("X", "", "")
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeAuto, AutoTags: []string{" LUMINA "}}
		assert.Equal(t, []string{"E"}, ids(RelatedArtworks(art, pool, 3)))
	})

	t.Run("空系列不互相匹配", func(t *testing.T) {
		art := published("Y", "", "")
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeAuto}
		assert.Empty(t, RelatedArtworks(art, pool, 3))
	})

	t.Run("数量限制", func(t *testing.T) {
		art := pool[0]
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeManual, ManualIDs: []string{"B", "C", "D", "E"}}
		assert.Len(t, RelatedArtworks(art, pool, 2), 2)
	})

	t.Run("手动列表为空时退回自动模式", func(t *testing.T) {
		art := pool[1]
		art.Related = model.RelatedArtworks{Mode: model.RelatedModeManual}
		assert.Equal(t, []string{"A"}, ids(RelatedArtworks(art, pool, 3)))
	})
}

func TestAdjacentArtworks(t *testing.T) {
	pool := []model.Artwork{published("A", "", ""), published("B", "", ""), published("C", "", "")}

	prev, next := AdjacentArtworks(pool, "B")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "A", prev.ID)
	assert.Equal(t, "C", next.ID)

	prev, next = AdjacentArtworks(pool, "A")
	assert.Nil(t, prev)
	assert.Equal(t, "B", next.ID)

	prev, next = AdjacentArtworks(pool, "missing")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestEnabledSections(t *testing.T) {
	doc := contentdef.Default()
	doc.Homepage.Sections[1].Enabled = false

	sections := EnabledSections(doc)
	require.Len(t, sections, 2)

	featured := sections[0]
	assert.Equal(t, model.SectionTypeFeaturedArt, featured.Type)
	// 草稿作品即使被引用也不会出现
	assert.Equal(t, []string{"art-luminous-atrium", "art-carpathian-winter"}, ids(featured.Artworks))

	expos := sections[1]
	assert.Equal(t, model.SectionTypeExpositions, expos.Type)
	assert.Len(t, expos.Expositions, 2)
}

func TestResolveSectionFeaturedFallback(t *testing.T) {
	pool := make([]model.Artwork, 0, 8)
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		pool = append(pool, published(id, "", ""))
	}
	section := model.HomepageSection{ID: "s", Type: model.SectionTypeFeaturedArt}
	resolved := ResolveSection(section, pool, nil)
	assert.Len(t, resolved.Artworks, featuredFallbackCount)
}

func TestSortedExpositions(t *testing.T) {
	input := []model.Exposition{
		{ID: "old", StartDate: "2023-01-01"},
		{ID: "new", StartDate: "2025-03-01"},
		{ID: "mid", StartDate: "2024-05-12"},
	}
	got := SortedExpositions(input)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "old", got[2].ID)
	assert.Equal(t, "old", input[0].ID)
}

func TestExpositionStatusOn(t *testing.T) {
	day := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		expo     model.Exposition
		expected string
	}{
		{"尚未开始", model.Exposition{StartDate: "2025-04-01", EndDate: "2025-05-01"}, model.ExpositionStatusUpcoming},
		{"进行中", model.Exposition{StartDate: "2025-03-01", EndDate: "2025-04-10"}, model.ExpositionStatusCurrent},
		{"结束当天仍在进行", model.Exposition{StartDate: "2025-03-01", EndDate: "2025-03-15"}, model.ExpositionStatusCurrent},
		{"已结束", model.Exposition{StartDate: "2025-01-01", EndDate: "2025-02-01"}, model.ExpositionStatusArchived},
		{"没有结束日期", model.Exposition{StartDate: "2025-01-01"}, model.ExpositionStatusCurrent},
		{"日期无法解析", model.Exposition{StartDate: "mai 2025", Status: model.ExpositionStatusArchived}, model.ExpositionStatusArchived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpositionStatusOn(tt.expo, day))
		})
	}
}

func TestArtworksByKindAndFilters(t *testing.T) {
	all := PublishedArtworks(contentdef.Default())
	abstractDraft := published("art-abs", "Explorări Abstracte", "")
	abstractDraft.Category = "Abstract"
	all = append(all, abstractDraft)

	paintings := ArtworksByKind(all, KindPainting)
	assert.Equal(t, []string{"art-luminous-atrium", "art-carpathian-winter"}, ids(paintings))
	assert.Equal(t, []string{"art-abs"}, ids(ArtworksByKind(all, KindAbstract)))
	assert.Len(t, ArtworksByKind(all, ""), 3)

	filters := CategoryFilters(paintings)
	require.Len(t, filters, 2)
	assert.Equal(t, CategoryFilter{Slug: "peisaje-urbane", Name: "Peisaje Urbane"}, filters[0])

	assert.Equal(t, []string{"art-carpathian-winter"}, ids(FilterByCategory(paintings, "peisaje-montane")))
	assert.Len(t, FilterByCategory(paintings, "toate"), 2)
	assert.Len(t, FilterByCategory(paintings, ""), 2)
}

func TestCategoryFiltersFallbackLabel(t *testing.T) {
	filters := CategoryFilters([]model.Artwork{published("a", "", "")})
	require.Len(t, filters, 1)
	assert.Equal(t, fallbackFilterLabel, filters[0].Name)
	assert.Equal(t, "colectie", filters[0].Slug)
}

func TestSEOFor(t *testing.T) {
	art := published("a", "", "")
	art.Title = "Iarnă în Carpați"
	art.Summary = "Un peisaj montan."

	seo := SEOFor(art)
	assert.Equal(t, "Iarnă în Carpați", seo.Title)
	assert.Equal(t, "Un peisaj montan.", seo.Description)
	assert.NotNil(t, seo.Keywords)

	art.SEO = model.SEO{Title: "Titlu SEO", Description: "Descriere", Keywords: []string{"munte"}}
	assert.Equal(t, art.SEO, SEOFor(art))
}
