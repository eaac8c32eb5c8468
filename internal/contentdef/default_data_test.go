package contentdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

func TestDefaultIsValid(t *testing.T) {
	doc := Default()
	require.NotNil(t, doc)
	assert.Equal(t, SiteVersion, doc.Version)

	_, err := schema.Validate(doc)
	assert.NoError(t, err)
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	require.Equal(t, a, b)

	a.ArtLibrary.Artworks[0].Title = "Modificat"
	a.SiteIdentity.Navigation = nil

	c := Default()
	assert.NotEqual(t, "Modificat", c.ArtLibrary.Artworks[0].Title)
	assert.NotEmpty(t, c.SiteIdentity.Navigation)
}

func TestRawReturnsCopy(t *testing.T) {
	raw := Raw()
	raw[0] = 'x'
	assert.Equal(t, byte('{'), Raw()[0])
}

func TestDefaultVisibilityFollowsStatus(t *testing.T) {
	for _, art := range Default().ArtLibrary.Artworks {
		if art.Status == "published" {
			assert.Equal(t, "public", art.Visibility, art.ID)
		} else {
			assert.Equal(t, "private", art.Visibility, art.ID)
		}
	}
}
