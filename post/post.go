package post

// Record is the canonical unit of extracted post data. The JSON field names
// match the on-disk index format, so previously scraped indexes keep loading.
type Record struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Date      string `json:"date"`
	LikeCount int    `json:"like_count"`
	IsPaid    bool   `json:"is_paid"`
	// Content is the serialized cleaned HTML fragment, including the
	// container's own tag.
	Content string `json:"content"`
	// URL identifies the post for index deduplication. Older index entries
	// may lack it.
	URL string `json:"url,omitempty"`
	// FileLink and HTMLLink are paths relative to the output root, set after
	// the corresponding file has been written.
	FileLink string `json:"file_link,omitempty"`
	HTMLLink string `json:"html_link,omitempty"`
}

// HasLinks reports whether at least one output file was written for the
// record. Only linked records are worth indexing or listing.
func (r Record) HasLinks() bool {
	return r.FileLink != "" || r.HTMLLink != ""
}
