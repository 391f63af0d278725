package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagesFor_CuratedTopic(t *testing.T) {
	catalog := NewImageCatalog()

	images := catalog.ImagesFor("dragons", 3)

	require.Len(t, images, 3)
	for _, img := range images {
		assert.NotEmpty(t, img.URL)
		assert.NotEmpty(t, img.Thumbnail)
		assert.NotEmpty(t, img.Alt)
	}
}

func TestImagesFor_LookupIsCaseInsensitive(t *testing.T) {
	catalog := NewImageCatalog()

	assert.Equal(t, catalog.ImagesFor("dragons", 2), catalog.ImagesFor("  Dragons ", 2))
}

func TestImagesFor_UnknownTopicGetsGenericImages(t *testing.T) {
	catalog := NewImageCatalog()

	images := catalog.ImagesFor("quantum knitting", 2)

	require.NotEmpty(t, images)
	for _, img := range images {
		assert.True(t, strings.Contains(img.Alt, "quantum knitting"), "alt %q", img.Alt)
	}
}

func TestImagesFor_CountTruncates(t *testing.T) {
	catalog := NewImageCatalog()

	assert.Len(t, catalog.ImagesFor("dragons", 1), 1)
	// Asking for more than exists returns what there is.
	assert.NotEmpty(t, catalog.ImagesFor("robots", 5))
}

func TestImagesFor_ReturnsACopy(t *testing.T) {
	catalog := NewImageCatalog()

	first := catalog.ImagesFor("pizza", 2)
	first[0].URL = "mutated"

	second := catalog.ImagesFor("pizza", 2)
	assert.NotEqual(t, "mutated", second[0].URL)
}
