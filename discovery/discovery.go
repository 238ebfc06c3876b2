// Package discovery resolves the set of post URLs for a Substack site.
// The sitemap is authoritative when it yields anything; otherwise the feed
// is tried. Either source failing -- network or parse -- counts as zero
// results from that source, never as an error: an empty result means
// "nothing to scrape".
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/mmcdole/gofeed"

	"github.com/haronxbelghit/sub2md/config"
)

// Discoverer fetches candidate post URLs from a site's sitemap or feed.
type Discoverer struct {
	client *http.Client
	cfg    config.Config
	logger *slog.Logger
}

// New creates a discoverer using the shared HTTP client.
func New(client *http.Client, cfg config.Config, logger *slog.Logger) *Discoverer {
	return &Discoverer{client: client, cfg: cfg, logger: logger}
}

// Discover returns the deduplicated, keyword-filtered post URLs for
// baseURL. Both sources yielding nothing produces an empty slice, not an
// error.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) []string {
	baseURL = strings.TrimRight(baseURL, "/")

	urls, err := d.fromSitemap(ctx, baseURL)
	if err != nil {
		d.logger.Warn("failed to fetch sitemap", "error", err)
		urls = nil
	}
	if len(urls) > 0 {
		d.logger.Info("found posts in sitemap", "count", len(urls))
	} else {
		d.logger.Debug("sitemap not available, falling back to feed")
		urls, err = d.fromFeed(ctx, baseURL)
		if err != nil {
			d.logger.Warn("failed to fetch feed", "error", err)
			urls = nil
		}
		if len(urls) > 0 {
			d.logger.Info("found posts in feed", "count", len(urls))
		} else {
			d.logger.Info("no posts found in feed")
		}
	}

	return dedupe(Filter(urls, d.cfg.Content.ExcludedKeywords))
}

// fromSitemap fetches `<baseURL>/sitemap.xml` and collects every <loc>
// value containing the post marker. A non-200 response is "no results",
// matching the fallback semantics.
func (d *Discoverer) fromSitemap(ctx context.Context, baseURL string) ([]string, error) {
	body, ok, err := d.get(ctx, baseURL+d.cfg.SitemapPath)
	if err != nil || !ok {
		return nil, err
	}
	defer body.Close()

	doc, err := xmlquery.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	var urls []string
	for _, node := range xmlquery.Find(doc, "//loc") {
		loc := strings.TrimSpace(node.InnerText())
		if strings.Contains(loc, d.cfg.PostMarker) {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// fromFeed fetches `<baseURL>/feed` and collects every item link. The feed
// encodes post-ness differently than the sitemap, so no post-marker
// filtering is applied here.
func (d *Discoverer) fromFeed(ctx context.Context, baseURL string) ([]string, error) {
	body, ok, err := d.get(ctx, baseURL+d.cfg.FeedPath)
	if err != nil || !ok {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var urls []string
	for _, item := range feed.Items {
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls, nil
}

// get issues a GET with the configured user agent. ok is false for any
// non-200 status.
func (d *Discoverer) get(ctx context.Context, rawURL string) (io.ReadCloser, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", d.cfg.Network.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, false, nil
	}
	return resp.Body, true, nil
}

// Filter drops URLs containing any of the given substrings. Matching is
// case-sensitive and order is preserved; filtering an already-filtered list
// returns the same list.
func Filter(urls []string, keywords []string) []string {
	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		if !containsAny(u, keywords) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// WriterName extracts the host label naming the writer, used as the
// per-author directory name: the subdomain for hosted sites, the domain
// label for custom domains. "https://example.substack.com",
// "https://blog.example.com" and "https://example.com" all resolve to
// "example".
func WriterName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", errors.New("URL has no host")
	}
	parts := strings.Split(host, ".")
	if len(parts) == 1 {
		return parts[0], nil
	}
	parts = parts[:len(parts)-1] // drop the TLD
	if len(parts) > 1 && parts[len(parts)-1] == "substack" {
		return parts[len(parts)-2], nil
	}
	return parts[len(parts)-1], nil
}
