package app

import (
	"testing"

	"linktrack/system/shorturl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOGRenderer_Render(t *testing.T) {
	r, err := NewOGRenderer("https://s.test/")
	require.NoError(t, err)

	html, err := r.Render(&model.Link{
		Slug:        "og1",
		OriginalURL: "https://example.com/post",
		Title:       `Tom & "Jerry"`,
		Description: "<b>desc</b>",
		UtmSource:   "social",
	})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, `<meta property="og:url" content="https://s.test/r/og1">`)
	assert.Contains(t, page, "Tom &amp; &#34;Jerry&#34;")
	assert.NotContains(t, page, "<b>desc</b>")
	assert.Contains(t, page, "https://example.com/post?utm_source=social")
}

func TestOGRenderer_TitleFallsBackToSlug(t *testing.T) {
	r, err := NewOGRenderer("")
	require.NoError(t, err)

	html, err := r.Render(&model.Link{Slug: "plain", OriginalURL: "https://example.com"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>plain</title>")
	assert.NotContains(t, string(html), "og:description")
}
