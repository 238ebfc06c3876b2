package extract

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haronxbelghit/sub2md/config"
)

func newTestExtractor() *Extractor {
	return New(config.Default().Content, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const fullPost = `
<html>
<body>
	<h1>Hello</h1>
	<time>2024-01-01</time>
	<span class="like-count">12</span>
	<div class="body">
		<h2>The subtitle</h2>
		<p>First paragraph.</p>
		<p>   </p>
		<script>alert("x")</script>
		<style>p { color: red }</style>
		<iframe src="https://embed.test"></iframe>
		<p>Second paragraph.</p>
	</div>
</body>
</html>`

// TestExtract_FullPost verifies all fields and the content cleanup
func TestExtract_FullPost(t *testing.T) {
	rec, err := newTestExtractor().Extract(parseDoc(t, fullPost))
	require.NoError(t, err)

	assert.Equal(t, "Hello", rec.Title)
	assert.Equal(t, "The subtitle", rec.Subtitle)
	assert.Equal(t, "2024-01-01", rec.Date)
	assert.Equal(t, 12, rec.LikeCount)
	assert.False(t, rec.IsPaid)

	assert.True(t, strings.HasPrefix(rec.Content, "<div class=\"body\">"), "content includes the container tag")
	assert.Contains(t, rec.Content, "First paragraph.")
	assert.Contains(t, rec.Content, "Second paragraph.")
	assert.NotContains(t, rec.Content, "<script")
	assert.NotContains(t, rec.Content, "<style")
	assert.NotContains(t, rec.Content, "<iframe")
}

// TestExtract_RemovesEmptyParagraphs verifies blank paragraphs are dropped
func TestExtract_RemovesEmptyParagraphs(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="body"><p>kept</p><p>  </p><p></p></div></body></html>`)
	rec, err := newTestExtractor().Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(rec.Content, "<p>"))
}

// TestExtract_NoContainer verifies the one fatal extraction failure
func TestExtract_NoContainer(t *testing.T) {
	doc := parseDoc(t, "<html><body><h1>Hello</h1><div class=\"other\">x</div></body></html>")
	_, err := newTestExtractor().Extract(doc)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

// TestExtract_ContainerFallbackOrder verifies the first matching class wins
func TestExtract_ContainerFallbackOrder(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="post-content"><p>fallback</p></div></body></html>`)
	rec, err := newTestExtractor().Extract(doc)
	require.NoError(t, err)
	assert.Contains(t, rec.Content, "fallback")

	both := parseDoc(t, `<html><body><div class="body"><p>primary</p></div><div class="post-content"><p>fallback</p></div></body></html>`)
	rec, err = newTestExtractor().Extract(both)
	require.NoError(t, err)
	assert.Contains(t, rec.Content, "primary")
	assert.NotContains(t, rec.Content, "fallback")
}

// TestExtract_Defaults verifies missing markers yield documented defaults
func TestExtract_Defaults(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="body"><p>only content</p></div></body></html>`)
	rec, err := newTestExtractor().Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, "Untitled", rec.Title)
	assert.Empty(t, rec.Subtitle)
	assert.Empty(t, rec.Date)
	assert.Zero(t, rec.LikeCount)
	assert.False(t, rec.IsPaid)
}

// TestExtract_MalformedLikeCount verifies bad counts fall back to zero
func TestExtract_MalformedLikeCount(t *testing.T) {
	for _, likes := range []string{"many", "", "-3", "12k"} {
		doc := parseDoc(t, `<html><body><span class="like-count">`+likes+`</span><div class="body"><p>x</p></div></body></html>`)
		rec, err := newTestExtractor().Extract(doc)
		require.NoError(t, err)
		assert.Zero(t, rec.LikeCount, "likes=%q", likes)
	}
}

// TestExtract_PaidFlag verifies the paywall marker is a presence test
func TestExtract_PaidFlag(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="paid-content">locked</div><div class="body"><p>x</p></div></body></html>`)
	rec, err := newTestExtractor().Extract(doc)
	require.NoError(t, err)
	assert.True(t, rec.IsPaid)
}

// TestExtract_SubtitleOnlyFromContainer verifies an h2 outside the
// container does not become the subtitle
func TestExtract_SubtitleOnlyFromContainer(t *testing.T) {
	doc := parseDoc(t, `<html><body><h2>elsewhere</h2><div class="body"><p>x</p></div></body></html>`)
	rec, err := newTestExtractor().Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, rec.Subtitle)
}
