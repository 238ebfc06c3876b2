// Package generator renders the per-author listing pages from the JSON
// index: an interactive HTML page and a plain Markdown index.
package generator

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haronxbelghit/sub2md/post"
)

const listingTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{.Author}}'s Blog</title>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>{{.CSS}}</style>
</head>
<body>
<button class="theme-toggle" onclick="toggleTheme()" aria-label="Toggle theme">&#9788;</button>

<div class="header">
    <h1>{{.Author}}'s Substack</h1>
</div>

<div class="controls">
    <div class="tabs">
        <div class="tab active" data-sort="date">By Date</div>
        <div class="tab" data-sort="likes">By Likes</div>
    </div>
    <select class="filter">
        <option value="all">All Articles</option>
        <option value="free">Free Articles</option>
        <option value="premium">Premium Articles</option>
    </select>
</div>

<div class="post-list" id="posts">
{{range .Posts}}<article class="post{{if .IsPaid}} premium{{end}}">
    <div class="post-header">
        <h2 class="post-title"><a href="{{.Href}}">{{.Title}}</a></h2>
        {{if .IsPaid}}<div class="premium-badge">Premium</div>{{end}}
    </div>
    <p class="post-excerpt">{{.Subtitle}}</p>
    <div class="post-meta">
        <div class="post-meta-item date">{{.Date}}</div>
        <div class="post-meta-item likes">&#10084; {{.LikeCount}}</div>
    </div>
    <a href="{{.Href}}" class="read-more">{{if .IsPaid}}Read premium article{{else}}Read article{{end}} <span>&#8594;</span></a>
</article>
{{end}}</div>

<div class="empty-state" style="display: none;">
    <p>No articles found for the selected filter.</p>
</div>

<script>{{.JS}}</script>
</body>
</html>
`

// listItem is one renderable entry of the listing.
type listItem struct {
	Title     string
	Subtitle  string
	Date      string
	LikeCount int
	IsPaid    bool
	Href      string
	MDName    string
	HTMLName  string
}

type listingData struct {
	Author string
	Posts  []listItem
	CSS    template.CSS
	JS     template.JS
}

// Generator renders listing files for one author from that author's index.
type Generator struct {
	author    string
	outputDir string
	logger    *slog.Logger
	tmpl      *template.Template
}

// New creates a generator for the author's index under outputDir.
func New(author, outputDir string, logger *slog.Logger) (*Generator, error) {
	if author == "" {
		return nil, errors.New("author name must be a non-empty string")
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	tmpl, err := template.New("listing").Parse(listingTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing template: %w", err)
	}
	return &Generator{author: author, outputDir: abs, logger: logger, tmpl: tmpl}, nil
}

// Generate loads the author's index and writes the HTML listing to
// `substack_html_pages/<author>/index.html` and the Markdown index to
// `substack_md_files/<author>/index.md`. An absent index produces empty
// listings rather than an error.
func (g *Generator) Generate() error {
	records, err := g.loadRecords()
	if err != nil {
		return err
	}
	items := g.buildItems(records)

	htmlPath := filepath.Join(g.outputDir, post.HTMLDir, g.author, "index.html")
	if err := g.writeListing(htmlPath, func() ([]byte, error) { return g.renderHTML(items) }); err != nil {
		return err
	}
	g.logger.Info("generated html listing", "path", htmlPath, "posts", len(items))

	mdPath := filepath.Join(g.outputDir, post.MarkdownDir, g.author, "index.md")
	if err := g.writeListing(mdPath, func() ([]byte, error) { return g.renderMarkdown(items), nil }); err != nil {
		return err
	}
	g.logger.Info("generated markdown listing", "path", mdPath, "posts", len(items))
	return nil
}

// loadRecords reads the author's index, preferring the legacy
// `<author>_essays.json` name over `<author>.json`. Records come back sorted
// by date string descending; no index at all is an empty listing.
func (g *Generator) loadRecords() ([]post.Record, error) {
	paths := []string{
		filepath.Join(g.outputDir, "data", g.author+"_essays.json"),
		filepath.Join(g.outputDir, "data", g.author+".json"),
	}

	var records []post.Record
	for _, p := range paths {
		recs, err := post.LoadIndex(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = recs
		break
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records, nil
}

// buildItems converts records to renderable items, dropping any without
// file links. The title link prefers the HTML rendition, which sits next to
// the listing; Markdown files live under the sibling tree.
func (g *Generator) buildItems(records []post.Record) []listItem {
	items := make([]listItem, 0, len(records))
	for _, rec := range records {
		if !rec.HasLinks() {
			continue
		}

		var href string
		switch {
		case rec.HTMLLink != "":
			href = "./" + path.Base(rec.HTMLLink)
		default:
			href = "../" + post.MarkdownDir + "/" + g.author + "/" + path.Base(rec.FileLink)
		}

		item := listItem{
			Title:     rec.Title,
			Subtitle:  rec.Subtitle,
			Date:      rec.Date,
			LikeCount: rec.LikeCount,
			IsPaid:    rec.IsPaid,
			Href:      href,
		}
		if rec.FileLink != "" {
			item.MDName = path.Base(rec.FileLink)
		}
		if rec.HTMLLink != "" {
			item.HTMLName = path.Base(rec.HTMLLink)
		}
		items = append(items, item)
	}
	return items
}

func (g *Generator) renderHTML(items []listItem) ([]byte, error) {
	var b strings.Builder
	err := g.tmpl.Execute(&b, listingData{
		Author: g.author,
		Posts:  items,
		CSS:    template.CSS(themeCSS),
		JS:     template.JS(themeJS),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render listing: %w", err)
	}
	return []byte(b.String()), nil
}

func (g *Generator) renderMarkdown(items []listItem) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s's Blog\n\n", g.author)
	b.WriteString("## Posts\n\n")

	for _, item := range items {
		fmt.Fprintf(&b, "### %s\n\n", item.Title)
		if item.MDName != "" {
			fmt.Fprintf(&b, "[Markdown](%s)  \n", item.MDName)
		}
		if item.HTMLName != "" {
			fmt.Fprintf(&b, "[HTML](%s)  \n", item.HTMLName)
		}
		if item.Subtitle != "" {
			fmt.Fprintf(&b, "_%s_\n\n", item.Subtitle)
		}
		fmt.Fprintf(&b, "**Date:** %s  \n", item.Date)
		fmt.Fprintf(&b, "**Likes:** %d  \n", item.LikeCount)
		if item.IsPaid {
			b.WriteString("**Premium Article**  \n")
		}
		b.WriteString("\n---\n\n")
	}
	return []byte(b.String())
}

// writeListing validates the target path stays inside the output root,
// creates the directory and writes the rendered bytes.
func (g *Generator) writeListing(targetPath string, render func() ([]byte, error)) error {
	if err := post.EnsureWithin(g.outputDir, targetPath); err != nil {
		return err
	}

	data, err := render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create listing directory: %w", err)
	}
	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}
	return nil
}
