// Package extract turns parsed post pages into structured records.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/haronxbelghit/sub2md/config"
	"github.com/haronxbelghit/sub2md/post"
)

// ErrContentNotFound indicates none of the configured container classes
// matched. This is the only fatal extraction failure -- without a content
// root there is nothing to save.
var ErrContentNotFound = errors.New("could not find main content container")

// Extractor pulls post data out of parsed documents using configured
// markers. Every sub-extraction except the container lookup is best-effort
// and falls back to a documented default.
type Extractor struct {
	cfg    config.Content
	logger *slog.Logger
}

// New creates an extractor using the given content markers.
func New(cfg config.Content, logger *slog.Logger) *Extractor {
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract builds a record from doc. The content container is cleaned in
// place before serialization, so callers must not reuse doc afterwards
// expecting the original markup.
func (e *Extractor) Extract(doc *goquery.Document) (*post.Record, error) {
	container := e.findContainer(doc)
	if container == nil {
		return nil, ErrContentNotFound
	}

	rec := &post.Record{
		Title:     e.extractTitle(doc),
		Subtitle:  e.extractSubtitle(container),
		Date:      e.extractDate(doc),
		LikeCount: e.extractLikeCount(doc),
		IsPaid:    e.isPaid(doc),
	}

	e.cleanContent(container)

	html, err := goquery.OuterHtml(container)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}
	rec.Content = html

	return rec, nil
}

// findContainer tries the configured container classes in order; the first
// match wins.
func (e *Extractor) findContainer(doc *goquery.Document) *goquery.Selection {
	for _, class := range e.cfg.ContainerClasses {
		sel := doc.Find("div." + class).First()
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find(e.cfg.TitleTag).First().Text())
	if title == "" {
		return "Untitled"
	}
	return title
}

// extractSubtitle looks only inside the content container.
func (e *Extractor) extractSubtitle(container *goquery.Selection) string {
	return strings.TrimSpace(container.Find(e.cfg.SubtitleTag).First().Text())
}

// extractDate returns the date text verbatim. No parsing or normalization
// happens anywhere downstream either; chronological sorting relies on the
// source emitting lexicographically sortable dates.
func (e *Extractor) extractDate(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(e.cfg.DateTag).First().Text())
}

func (e *Extractor) extractLikeCount(doc *goquery.Document) int {
	text := strings.TrimSpace(doc.Find("span." + e.cfg.LikeCountClass).First().Text())
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		if text != "" {
			e.logger.Debug("unparseable like count", "value", text)
		}
		return 0
	}
	return n
}

func (e *Extractor) isPaid(doc *goquery.Document) bool {
	return doc.Find("div."+e.cfg.PaidClass).Length() > 0
}

// cleanContent removes unwanted elements and empty paragraphs from the
// container in place.
func (e *Extractor) cleanContent(container *goquery.Selection) {
	if len(e.cfg.RemoveElements) > 0 {
		container.Find(strings.Join(e.cfg.RemoveElements, ", ")).Remove()
	}
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		if strings.TrimSpace(p.Text()) == "" {
			p.Remove()
		}
	})
}
