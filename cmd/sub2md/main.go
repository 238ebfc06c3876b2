// Command sub2md scrapes a Substack site into local Markdown and HTML
// files, maintains a JSON index per author and renders listing pages.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/haronxbelghit/sub2md/cache"
	"github.com/haronxbelghit/sub2md/config"
	"github.com/haronxbelghit/sub2md/generator"
	"github.com/haronxbelghit/sub2md/history"
	"github.com/haronxbelghit/sub2md/scraper"
)

type options struct {
	URL       string `short:"u" long:"url" description:"Base URL of the Substack site to scrape"`
	Number    int    `short:"n" long:"number" description:"Maximum number of posts to scrape (0 = all)"`
	Directory string `short:"d" long:"directory" default:"output" description:"Output directory"`
	Config    string `short:"c" long:"config" description:"Optional YAML config file overriding defaults"`
	OnlyMD    bool   `short:"m" long:"only-md" description:"Write Markdown files only"`
	OnlyHTML  bool   `short:"w" long:"only-html" description:"Write HTML pages only"`
	Debug     bool   `long:"debug" description:"Enable debug logging and run timing"`

	ClearCache bool `long:"clear-cache" description:"Clear the page cache for the output directory and exit"`
	CacheStats bool `long:"cache-stats" description:"Print page cache statistics and exit"`
	History    bool `long:"history" description:"Print recorded scrape runs and exit"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger, closeLog, err := buildLogger(opts.Directory, cfg.LogFile, opts.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	// Maintenance commands operate on the output directory and exit.
	switch {
	case opts.ClearCache:
		return clearCache(opts.Directory, logger)
	case opts.CacheStats:
		return cacheStats(opts.Directory, logger)
	case opts.History:
		return showHistory(opts.Directory, opts.Number)
	}

	if opts.URL == "" {
		fmt.Fprintln(os.Stderr, "error: --url is required")
		return 2
	}
	mode, err := outputMode(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(opts.URL, opts.Directory, mode, cfg, logger)
	if err != nil {
		logger.Error("failed to set up scraper", "error", err)
		return 1
	}

	started := time.Now()
	records, runErr := s.Run(ctx, opts.Number)
	finished := time.Now()

	if runErr != nil {
		logger.Error("scrape did not complete", "error", runErr)
		return 1
	}

	recordRun(opts, s.WriterName(), mode, len(records), started, finished, logger)

	gen, err := generator.New(s.WriterName(), opts.Directory, logger)
	if err != nil {
		logger.Error("failed to set up generator", "error", err)
		return 1
	}
	if err := gen.Generate(); err != nil {
		logger.Error("failed to generate listings", "error", err)
		return 1
	}

	logger.Info("done", "posts", len(records), "writer", s.WriterName())
	if opts.Debug {
		logger.Debug("run timing", "duration", finished.Sub(started))
	}
	return 0
}

// buildLogger writes to stderr and to the log file under the output
// directory, which is created here since logging starts before the scraper.
func buildLogger(dir, logFile string, debug bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, f), &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { f.Close() }, nil
}

func outputMode(opts options) (string, error) {
	switch {
	case opts.OnlyMD && opts.OnlyHTML:
		return "", errors.New("--only-md and --only-html are mutually exclusive")
	case opts.OnlyMD:
		return config.ModeMD, nil
	case opts.OnlyHTML:
		return config.ModeHTML, nil
	default:
		return config.ModeBoth, nil
	}
}

// recordRun stores the run in the history database. History is advisory:
// failures are logged and do not fail the run.
func recordRun(opts options, writer, mode string, scraped int, started, finished time.Time, logger *slog.Logger) {
	dataDir := filepath.Join(opts.Directory, scraper.DataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Warn("failed to create data directory for history", "error", err)
		return
	}
	store, err := history.NewRunStore(filepath.Join(dataDir, "history.db"))
	if err != nil {
		logger.Warn("failed to open run history", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(opts.URL, writer, mode, scraped, started, finished); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}

func clearCache(dir string, logger *slog.Logger) int {
	c, err := cache.New(filepath.Join(dir, scraper.CacheDirName), logger)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		return 1
	}
	before := c.Stats()
	c.Clear()
	fmt.Printf("cleared %d cached pages (%d bytes)\n", before.Count, before.TotalBytes)
	return 0
}

func cacheStats(dir string, logger *slog.Logger) int {
	c, err := cache.New(filepath.Join(dir, scraper.CacheDirName), logger)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		return 1
	}
	stats := c.Stats()
	fmt.Printf("cached pages: %d\ntotal size: %d bytes\n", stats.Count, stats.TotalBytes)
	return 0
}

func showHistory(dir string, limit int) int {
	dbPath := filepath.Join(dir, scraper.DataDirName, "history.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("no runs recorded")
		return 0
	}
	store, err := history.NewRunStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return 0
	}
	for _, r := range runs {
		fmt.Printf("%s  %-10s  %-5s  %3d posts  %s  (%s)\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Writer, r.Mode, r.Scraped, r.BaseURL, r.Duration().Round(time.Millisecond))
	}
	return 0
}
