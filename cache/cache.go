// Package cache stores raw fetched pages on disk, keyed by URL, so repeat
// runs skip the network entirely. The key is a hash of the URL string, not
// of the content: a page that changes upstream stays invisible to the cache
// until it is cleared. That staleness is the intended tradeoff.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const fileExt = ".cache"

// Cache is a best-effort file cache of parsed pages. Every operation
// degrades instead of failing: a broken read is a miss, a broken write is a
// no-op.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Key derives the deterministic cache key for a URL.
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, Key(url)+fileExt)
}

// Get returns the cached parsed document for url, or nil on a miss. Read
// and parse failures are logged and reported as misses.
func (c *Cache) Get(url string) *goquery.Document {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache read failed", "url", url, "error", err)
		}
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		c.logger.Warn("cache parse failed", "url", url, "error", err)
		return nil
	}
	return doc
}

// Put serializes doc back to HTML and stores it for url, overwriting any
// existing entry. Failures are logged and swallowed.
func (c *Cache) Put(url string, doc *goquery.Document) {
	html, err := doc.Html()
	if err != nil {
		c.logger.Warn("cache serialize failed", "url", url, "error", err)
		return
	}
	if err := os.WriteFile(c.path(url), []byte(html), 0o644); err != nil {
		c.logger.Warn("cache write failed", "url", url, "error", err)
	}
}

// Clear deletes every cache file. Per-file failures are logged and skipped.
func (c *Cache) Clear() {
	files, err := filepath.Glob(filepath.Join(c.dir, "*"+fileExt))
	if err != nil {
		c.logger.Warn("cache enumeration failed", "error", err)
		return
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			c.logger.Warn("cache delete failed", "path", f, "error", err)
		}
	}
}

// Stats summarizes the cache contents.
type Stats struct {
	Count      int
	TotalBytes int64
}

// Stats enumerates cache files and sums their sizes. Enumeration failures
// yield zero-valued stats.
func (c *Cache) Stats() Stats {
	var stats Stats
	files, err := filepath.Glob(filepath.Join(c.dir, "*"+fileExt))
	if err != nil {
		return stats
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalBytes += info.Size()
	}
	return stats
}
