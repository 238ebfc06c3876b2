package post

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Subdirectories under the output root holding per-post files, each with one
// subdirectory per author.
const (
	MarkdownDir = "substack_md_files"
	HTMLDir     = "substack_html_pages"
)

// reservedChars are characters not allowed in filenames on common
// filesystems; each occurrence is replaced with an underscore.
var reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// PathError reports a write target that resolves outside the output root.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s is outside the output directory", e.Path)
}

// Writer persists records as Markdown and HTML files under the output root.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// NewWriter creates a writer rooted at outputDir. The directory path is
// resolved to an absolute path so containment checks are stable.
func NewWriter(outputDir string, logger *slog.Logger) (*Writer, error) {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &Writer{outputDir: abs, logger: logger}, nil
}

// Filename builds the sanitized `<date>_<title><ext>` filename for a record.
func Filename(date, title, ext string) string {
	return reservedChars.ReplaceAllString(date+"_"+title+ext, "_")
}

// EnsureWithin fails with a PathError unless path resolves lexically inside
// root (or to root itself). root must already be absolute.
func EnsureWithin(root, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Path: path}
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return &PathError{Path: abs}
	}
	return nil
}

// writeFile writes data to path via a temp file and rename, so an
// interrupted run never leaves a partial file at the final path.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sub2md-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteMarkdown writes the record as a Markdown file under
// `<outputDir>/substack_md_files/<author>/` and sets rec.FileLink to the
// path relative to the output root.
func (w *Writer) WriteMarkdown(rec *Record, author string) error {
	filename := Filename(rec.Date, rec.Title, ".md")
	dir := filepath.Join(w.outputDir, MarkdownDir, author)
	if err := EnsureWithin(w.outputDir, filepath.Join(dir, filename)); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create markdown directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	if rec.Subtitle != "" {
		fmt.Fprintf(&b, "## %s\n\n", rec.Subtitle)
	}
	fmt.Fprintf(&b, "Date: %s\n", rec.Date)
	fmt.Fprintf(&b, "Likes: %d\n", rec.LikeCount)
	fmt.Fprintf(&b, "Paid: %t\n\n", rec.IsPaid)
	b.WriteString(rec.Content)

	path := filepath.Join(dir, filename)
	if err := writeFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	w.logger.Debug("saved markdown", "path", path)

	rec.FileLink = filepath.ToSlash(filepath.Join(MarkdownDir, author, filename))
	return nil
}

// WriteHTML writes the record as a minimal standalone HTML document under
// `<outputDir>/substack_html_pages/<author>/` and sets rec.HTMLLink.
func (w *Writer) WriteHTML(rec *Record, author string) error {
	filename := Filename(rec.Date, rec.Title, ".html")
	dir := filepath.Join(w.outputDir, HTMLDir, author)
	if err := EnsureWithin(w.outputDir, filepath.Join(dir, filename)); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create html directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", rec.Title)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", rec.Title)
	if rec.Subtitle != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", rec.Subtitle)
	}
	fmt.Fprintf(&b, "<p>Date: %s</p>\n", rec.Date)
	fmt.Fprintf(&b, "<p>Likes: %d</p>\n", rec.LikeCount)
	fmt.Fprintf(&b, "<p>Paid: %t</p>\n", rec.IsPaid)
	b.WriteString(rec.Content)
	b.WriteString("\n</body>\n</html>")

	path := filepath.Join(dir, filename)
	if err := writeFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write html file: %w", err)
	}
	w.logger.Debug("saved html", "path", path)

	rec.HTMLLink = filepath.ToSlash(filepath.Join(HTMLDir, author, filename))
	return nil
}
