package config

import "time"

// Output modes selecting which per-post files are written.
const (
	ModeBoth = "both"
	ModeMD   = "md"
	ModeHTML = "html"
)

// ValidMode reports whether mode is one of the supported output modes.
func ValidMode(mode string) bool {
	return mode == ModeBoth || mode == ModeMD || mode == ModeHTML
}

// Network holds HTTP client settings.
type Network struct {
	// MaxConcurrentRequests bounds how many fetches are in flight at once.
	MaxConcurrentRequests int
	// RequestTimeout is the total time budget for a single request.
	RequestTimeout time.Duration
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration
	// ReadTimeout bounds waiting for response headers.
	ReadTimeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

// Content holds the markers used to locate post data in a page.
type Content struct {
	// ExcludedKeywords drops discovered URLs containing any of these
	// substrings (case-sensitive).
	ExcludedKeywords []string
	// ContainerClasses are tried in order to locate the main content div;
	// the first match wins.
	ContainerClasses []string
	// TitleTag matches the post title anywhere in the document.
	TitleTag string
	// SubtitleTag matches the subtitle within the content container.
	SubtitleTag string
	// DateTag matches the publication date anywhere in the document.
	DateTag string
	// LikeCountClass is the span class holding the like count.
	LikeCountClass string
	// PaidClass is the div class whose presence marks a paywalled post.
	PaidClass string
	// RemoveElements are stripped from the content container before
	// serialization.
	RemoveElements []string
}

// Config is the full immutable configuration for a scrape run. Populate it
// once at startup with Default (optionally overlaid by Load) and pass it by
// value; nothing mutates it afterwards.
type Config struct {
	Network Network
	Content Content

	// FileIOLimit bounds concurrent file writes.
	FileIOLimit int

	// SitemapPath and FeedPath are appended to the base URL for discovery.
	SitemapPath string
	FeedPath    string
	// PostMarker is the substring identifying sitemap entries as posts.
	PostMarker string

	// LogFile is the log filename created under the output directory.
	LogFile string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Network: Network{
			MaxConcurrentRequests: 5,
			RequestTimeout:        30 * time.Second,
			ConnectTimeout:        10 * time.Second,
			ReadTimeout:           10 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Content: Content{
			ExcludedKeywords: []string{"about", "archive", "podcast"},
			ContainerClasses: []string{"body", "post-content"},
			TitleTag:         "h1",
			SubtitleTag:      "h2",
			DateTag:          "time",
			LikeCountClass:   "like-count",
			PaidClass:        "paid-content",
			RemoveElements:   []string{"script", "style", "iframe"},
		},
		FileIOLimit: 500,
		SitemapPath: "/sitemap.xml",
		FeedPath:    "/feed",
		PostMarker:  "/p/",
		LogFile:     "sub2md.log",
	}
}
