package post

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestFilename_Sanitization verifies reserved characters never survive
func TestFilename_Sanitization(t *testing.T) {
	name := Filename(`2024/01\01`, `What: "a title"? <yes>|*`, ".md")

	for _, c := range `<>:"/\|?*` {
		assert.NotContains(t, name, string(c))
	}
	assert.True(t, strings.HasSuffix(name, ".md"))
}

// TestFilename_CleanInputPassesThrough verifies well-behaved names are kept
func TestFilename_CleanInputPassesThrough(t *testing.T) {
	assert.Equal(t, "2024-01-01_Hello.md", Filename("2024-01-01", "Hello", ".md"))
}

// TestWriteMarkdown verifies body layout and the relative file link
func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, testLogger())
	require.NoError(t, err)

	rec := &Record{
		Title:     "Hello",
		Subtitle:  "A subtitle",
		Date:      "2024-01-01",
		LikeCount: 7,
		IsPaid:    true,
		Content:   "<div class=\"body\"><p>text</p></div>",
	}
	require.NoError(t, w.WriteMarkdown(rec, "example"))

	assert.Equal(t, "substack_md_files/example/2024-01-01_Hello.md", rec.FileLink)

	data, err := os.ReadFile(filepath.Join(dir, "substack_md_files", "example", "2024-01-01_Hello.md"))
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "# Hello\n\n")
	assert.Contains(t, body, "## A subtitle\n\n")
	assert.Contains(t, body, "Date: 2024-01-01\n")
	assert.Contains(t, body, "Likes: 7\n")
	assert.Contains(t, body, "Paid: true\n")
	assert.True(t, strings.HasSuffix(body, rec.Content), "content fragment is embedded verbatim")
}

// TestWriteMarkdown_NoSubtitle verifies the subtitle heading is omitted
func TestWriteMarkdown_NoSubtitle(t *testing.T) {
	w, err := NewWriter(t.TempDir(), testLogger())
	require.NoError(t, err)

	rec := &Record{Title: "Hello", Date: "2024-01-01"}
	require.NoError(t, w.WriteMarkdown(rec, "example"))

	data, err := os.ReadFile(filepath.Join(w.outputDir, "substack_md_files", "example", "2024-01-01_Hello.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## ")
}

// TestWriteHTML verifies the standalone document and the relative link
func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, testLogger())
	require.NoError(t, err)

	rec := &Record{
		Title:   "Hello",
		Date:    "2024-01-01",
		Content: "<div class=\"body\"><p>text</p></div>",
	}
	require.NoError(t, w.WriteHTML(rec, "example"))

	assert.Equal(t, "substack_html_pages/example/2024-01-01_Hello.html", rec.HTMLLink)

	data, err := os.ReadFile(filepath.Join(dir, "substack_html_pages", "example", "2024-01-01_Hello.html"))
	require.NoError(t, err)
	body := string(data)

	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<title>Hello</title>")
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.Contains(t, body, rec.Content)
	assert.True(t, strings.HasSuffix(body, "</html>"))
}

// TestEnsureWithin verifies the containment check shared by every writer of
// output-root files
func TestEnsureWithin(t *testing.T) {
	root, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, EnsureWithin(root, filepath.Join(root, "data", "x.json")))
	assert.NoError(t, EnsureWithin(root, root))

	var pathErr *PathError
	assert.ErrorAs(t, EnsureWithin(root, filepath.Join(root, "..", "escape.md")), &pathErr)
	assert.ErrorAs(t, EnsureWithin(root, root+"-sibling"), &pathErr,
		"a sibling sharing the root as a name prefix is outside")
}

// TestWriter_PathEscape verifies a path escaping the output root is rejected
// before any write
func TestWriter_PathEscape(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, testLogger())
	require.NoError(t, err)

	rec := &Record{Title: "x", Date: "2024-01-01"}
	err = w.WriteMarkdown(rec, "../../escape")

	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Empty(t, rec.FileLink, "link must not be set on failure")

	// Nothing may have been written outside the root.
	_, statErr := os.Stat(filepath.Join(dir, "..", "escape"))
	assert.True(t, os.IsNotExist(statErr))
}

// TestWriter_OverwriteSameDateTitle verifies identical date+title overwrite
// rather than erroring
func TestWriter_OverwriteSameDateTitle(t *testing.T) {
	w, err := NewWriter(t.TempDir(), testLogger())
	require.NoError(t, err)

	first := &Record{Title: "Same", Date: "2024-01-01", Content: "<div>one</div>"}
	second := &Record{Title: "Same", Date: "2024-01-01", Content: "<div>two</div>"}
	require.NoError(t, w.WriteMarkdown(first, "example"))
	require.NoError(t, w.WriteMarkdown(second, "example"))

	data, err := os.ReadFile(filepath.Join(w.outputDir, "substack_md_files", "example", "2024-01-01_Same.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "two")
}
