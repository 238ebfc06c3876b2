// Package scraper orchestrates the fetch-extract-persist pipeline for a
// single Substack site.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/haronxbelghit/sub2md/cache"
	"github.com/haronxbelghit/sub2md/config"
	"github.com/haronxbelghit/sub2md/discovery"
	"github.com/haronxbelghit/sub2md/extract"
	"github.com/haronxbelghit/sub2md/post"
)

// Subdirectories created under the output root.
const (
	CacheDirName = "cache"
	DataDirName  = "data"
)

// StatusError reports a non-200 response for one URL. It is contained
// inside the pipeline: the URL yields no record and the run continues.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

// Scraper runs the pipeline: discover URLs, fetch each one through the
// cache, extract a record, write the per-post files, and merge the index.
//
// All URLs are launched as concurrent tasks; fetchSem bounds how many are
// in the fetching phase at once and fileSem bounds concurrent file writes.
// Tasks beyond the fetch limit block at the network step, not at launch.
type Scraper struct {
	baseURL    string
	outputDir  string
	mode       string
	writerName string
	cfg        config.Config
	logger     *slog.Logger

	client    *http.Client
	cache     *cache.Cache
	extractor *extract.Extractor
	writer    *post.Writer
	disc      *discovery.Discoverer

	fetchSem chan struct{}
	fileSem  chan struct{}

	mu        sync.Mutex
	processed map[string]struct{}
	results   []post.Record
	completed atomic.Int64
}

// New validates the run parameters, creates the output layout and builds
// the shared HTTP client. outputDir is resolved to an absolute path.
func New(baseURL, outputDir, mode string, cfg config.Config, logger *slog.Logger) (*Scraper, error) {
	if baseURL == "" {
		return nil, errors.New("base URL must be a non-empty string")
	}
	if outputDir == "" {
		return nil, errors.New("output directory must be a non-empty string")
	}
	if !config.ValidMode(mode) {
		return nil, fmt.Errorf("output mode must be one of: %s, %s, %s",
			config.ModeBoth, config.ModeMD, config.ModeHTML)
	}

	writerName, err := discovery.WriterName(baseURL)
	if err != nil {
		return nil, err
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	client := &http.Client{
		Timeout: cfg.Network.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.Network.ConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   cfg.Network.ConnectTimeout,
			ResponseHeaderTimeout: cfg.Network.ReadTimeout,
		},
	}

	pageCache, err := cache.New(filepath.Join(absDir, CacheDirName), logger)
	if err != nil {
		return nil, err
	}
	writer, err := post.NewWriter(absDir, logger)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		baseURL:    baseURL,
		outputDir:  absDir,
		mode:       mode,
		writerName: writerName,
		cfg:        cfg,
		logger:     logger,
		client:     client,
		cache:      pageCache,
		extractor:  extract.New(cfg.Content, logger),
		writer:     writer,
		disc:       discovery.New(client, cfg, logger),
		fetchSem:   make(chan struct{}, cfg.Network.MaxConcurrentRequests),
		fileSem:    make(chan struct{}, cfg.FileIOLimit),
		processed:  make(map[string]struct{}),
	}, nil
}

// WriterName returns the per-author directory name derived from the base
// URL.
func (s *Scraper) WriterName() string {
	return s.writerName
}

// IndexPath returns the JSON index path for this site.
func (s *Scraper) IndexPath() string {
	return filepath.Join(s.outputDir, DataDirName, s.writerName+".json")
}

// Run discovers post URLs, scrapes up to limit of them (0 means all), and
// merges the successful records into the index. Records are returned in
// completion order. A cancelled context skips the index merge so a partial
// index is never written; per-URL failures never abort the run.
func (s *Scraper) Run(ctx context.Context, limit int) ([]post.Record, error) {
	urls := s.disc.Discover(ctx, s.baseURL)
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	if len(urls) == 0 {
		s.logger.Info("no posts found to scrape")
		return nil, nil
	}
	s.logger.Info("scraping posts", "count", len(urls))

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			s.processURL(ctx, u, len(urls))
		}(url)
	}
	wg.Wait()

	s.mu.Lock()
	results := make([]post.Record, len(s.results))
	copy(results, s.results)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("run cancelled, skipping index merge")
		return results, err
	}

	if err := os.MkdirAll(filepath.Join(s.outputDir, DataDirName), 0o755); err != nil {
		return results, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := post.MergeIndex(results, s.IndexPath(), s.logger); err != nil {
		return results, err
	}
	return results, nil
}

// processURL runs the fetch-extract-persist steps for one URL, isolating
// its failures from sibling tasks.
func (s *Scraper) processURL(ctx context.Context, url string, total int) {
	s.mu.Lock()
	if _, dup := s.processed[url]; dup {
		s.mu.Unlock()
		return
	}
	s.processed[url] = struct{}{}
	s.mu.Unlock()

	rec, err := s.scrapeOne(ctx, url)
	done := s.completed.Add(1)
	if err != nil {
		if isNetworkError(err) {
			s.logger.Debug("skipping post", "url", url, "error", err)
		} else {
			s.logger.Error("failed to process post", "url", url, "error", err)
		}
		return
	}

	s.mu.Lock()
	s.results = append(s.results, *rec)
	s.mu.Unlock()

	s.logger.Info("scraped post", "title", rec.Title, "progress", fmt.Sprintf("%d/%d", done, total))
}

func (s *Scraper) scrapeOne(ctx context.Context, url string) (*post.Record, error) {
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	rec, err := s.extractor.Extract(doc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	rec.URL = url

	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// fetchDocument returns the parsed page for url, from the cache when
// possible. The fetch admission gate is held for the whole phase so cache
// hits also count against it, matching the bound on in-flight work.
func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	select {
	case s.fetchSem <- struct{}{}: // acquire fetch gate
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.fetchSem }()

	if doc := s.cache.Get(url); doc != nil {
		s.logger.Debug("using cached content", "url", url)
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.Network.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	s.cache.Put(url, doc)
	return doc, nil
}

// persist writes the record's files per the output mode under the file-IO
// gate and fills in its links.
func (s *Scraper) persist(ctx context.Context, rec *post.Record) error {
	select {
	case s.fileSem <- struct{}{}: // acquire file-IO gate
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.fileSem }()

	if s.mode == config.ModeBoth || s.mode == config.ModeMD {
		if err := s.writer.WriteMarkdown(rec, s.writerName); err != nil {
			return err
		}
	}
	if s.mode == config.ModeBoth || s.mode == config.ModeHTML {
		if err := s.writer.WriteHTML(rec, s.writerName); err != nil {
			return err
		}
	}
	return nil
}

// isNetworkError reports whether err is a per-URL network failure (non-200
// status, transport error, or cancellation mid-request). These are expected
// during normal operation and logged at debug level only.
func isNetworkError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
