package main

import (
	"fmt"
	"io"
	stdslog "log/slog"

	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	fmt.Fprintf(deps.Stdout, "Crawling %s (%s) via %s\n", cfg.SourceName, cfg.SourceDomain, cfg.FetchMethod)

	stats, err := deps.Engine.Run(deps.Ctx, func(event crawl.ProgressEvent) {
		printProgress(deps.Stdout, deps.Stderr, event)
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikivault.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nCategories: %d  Crawled: %d  Updated: %d  Unchanged: %d  Failed: %d\n",
		stats.Categories, stats.PagesCrawled, stats.PagesUpdated, stats.PagesSkipped, stats.PagesFailed)

	if stats.Stopped {
		fmt.Fprintln(deps.Stdout, "Interrupted. Run 'wikivault crawl' again to resume from the checkpoint.")
		return ErrStopped
	}
	return nil
}

// printProgress renders a progress event as a console line.
func printProgress(stdout, stderr io.Writer, event crawl.ProgressEvent) {
	switch event.Type {
	case crawl.ProgressDiscovered:
		if event.Completed > 0 {
			fmt.Fprintf(stdout, "Resuming at category %d of %d\n", event.Completed+1, event.Total)
		} else {
			fmt.Fprintf(stdout, "Discovered %d categories\n", event.Total)
		}
	case crawl.ProgressCategoryStarted:
		fmt.Fprintf(stdout, "[%d/%d] %s\n", event.Completed+1, event.Total, crawl.TruncateURL(event.Category, 70))
	case crawl.ProgressArticleCompleted:
		fmt.Fprintf(stdout, "  %d/%d %s\n", event.Completed, event.Total, crawl.TruncateURL(event.URL, 70))
	case crawl.ProgressArticleFailed:
		fmt.Fprintf(stderr, "  failed %s: %s\n", crawl.TruncateURL(event.URL, 70), wikivault.ErrorMessage(event.Error))
	case crawl.ProgressFinished:
		fmt.Fprintf(stdout, "Done: %d of %d categories complete\n", event.Completed, event.Total)
	}
}

// newLogger builds the structured logger used by the service decorators.
func newLogger(w io.Writer, verbose bool) *stdslog.Logger {
	level := stdslog.LevelInfo
	if verbose {
		level = stdslog.LevelDebug
	}
	return stdslog.New(stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: level}))
}
