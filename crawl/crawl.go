// Package crawl provides wiki crawling orchestration.
// It coordinates category discovery, member listing, fetching, change
// detection, and checkpointed storage of wiki pages.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/wikivault/wikivault"
	"golang.org/x/sync/errgroup"
)

// checkpointEvery is the number of processed articles between intermediate
// checkpoint saves inside a category.
const checkpointEvery = 10

// Engine orchestrates a resumable crawl of a wiki site.
//
// Traversal uses the Lister when one is set (API-backed wikis), and falls
// back to Fetcher+Links page scraping otherwise. Both paths share the
// Limiter, so the inter-request delay holds across concurrent workers.
type Engine struct {
	Fetcher     wikivault.Fetcher
	Links       wikivault.LinkExtractor
	Lister      wikivault.PageLister
	Documents   wikivault.DocumentService
	Checkpoints wikivault.CheckpointService
	Detector    *ChangeDetector
	Limiter     wikivault.Limiter

	StartURL     string
	SourceName   string
	SourceDomain string
	Concurrency  int

	// Now is the clock used for document and checkpoint timestamps.
	// Defaults to time.Now.
	Now func() time.Time
}

// Stats holds the outcome of a crawl run. Counters include totals carried
// over from a resumed checkpoint.
type Stats struct {
	Categories   int
	PagesCrawled int
	PagesUpdated int
	PagesSkipped int
	PagesFailed  int

	// Stopped is true when the run ended early due to cancellation rather
	// than exhausting the category list.
	Stopped bool
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type      ProgressType
	Category  string
	URL       string
	Completed int
	Total     int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressDiscovered ProgressType = iota
	ProgressCategoryStarted
	ProgressArticleCompleted
	ProgressArticleFailed
	ProgressCategoryCompleted
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// articleResult holds the outcome of processing a single article URL.
type articleResult struct {
	url     string
	updated bool
	err     error
}

// Run executes the crawl from the stored checkpoint, or from fresh category
// discovery when no checkpoint exists. It returns stats for the run even
// when stopped early; a stopped run leaves a checkpoint behind so the next
// run resumes where this one left off.
func (e *Engine) Run(ctx context.Context, progress ProgressFunc) (*Stats, error) {
	cp, err := e.Checkpoints.LoadCheckpoint(ctx)
	switch {
	case wikivault.ErrorCode(err) == wikivault.ENOTFOUND:
		categories, derr := e.discoverCategories(ctx)
		if derr != nil {
			return nil, fmt.Errorf("category discovery: %w", derr)
		}
		cp = &wikivault.Checkpoint{Categories: categories}
		if serr := e.saveCheckpoint(ctx, cp); serr != nil {
			return nil, serr
		}
	case err != nil:
		return nil, err
	}

	stats := &Stats{
		Categories:   len(cp.Categories),
		PagesCrawled: cp.PagesCrawled,
		PagesUpdated: cp.PagesUpdated,
		PagesSkipped: cp.PagesSkipped,
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressDiscovered,
			Completed: cp.CategoryIndex,
			Total:     len(cp.Categories),
		})
	}

	for cp.CategoryIndex < len(cp.Categories) {
		if ctx.Err() != nil {
			stats.Stopped = true
			break
		}

		category := cp.Categories[cp.CategoryIndex]
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCategoryStarted,
				Category:  category,
				Completed: cp.CategoryIndex,
				Total:     len(cp.Categories),
			})
		}

		articles, err := e.listArticles(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				stats.Stopped = true
				break
			}
			// A category whose member listing fails is skipped rather than
			// aborting the whole run. It will be revisited on the next
			// fresh crawl.
			stats.PagesFailed++
			if progress != nil {
				progress(ProgressEvent{
					Type:     ProgressArticleFailed,
					Category: category,
					URL:      category,
					Error:    err,
				})
			}
			e.advanceCategory(cp)
			if serr := e.saveCheckpoint(ctx, cp); serr != nil {
				return nil, serr
			}
			continue
		}

		stopped, err := e.processCategory(ctx, cp, category, articles, stats, progress)
		if err != nil {
			return nil, err
		}
		if stopped {
			stats.Stopped = true
			break
		}

		e.advanceCategory(cp)
		if serr := e.saveCheckpoint(ctx, cp); serr != nil {
			return nil, serr
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCategoryCompleted,
				Category:  category,
				Completed: cp.CategoryIndex,
				Total:     len(cp.Categories),
			})
		}
	}

	if err := e.saveCheckpoint(context.WithoutCancel(ctx), cp); err != nil {
		return stats, err
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: cp.CategoryIndex,
			Total:     len(cp.Categories),
		})
	}

	return stats, nil
}

// processCategory runs the category's unprocessed articles through a bounded
// worker pool, recording completions in the checkpoint's processed set as
// they land. It returns stopped=true when the run was cut short by
// cancellation; the category is then left incomplete in the checkpoint.
func (e *Engine) processCategory(ctx context.Context, cp *wikivault.Checkpoint, category string, articles []string, stats *Stats, progress ProgressFunc) (bool, error) {
	done := make(map[string]bool, len(cp.Processed))
	for _, u := range cp.Processed {
		done[u] = true
	}
	var pending []string
	for _, u := range articles {
		if !done[u] {
			pending = append(pending, u)
		}
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	resultCh := make(chan articleResult, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, u := range pending {
			u := u
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				resultCh <- e.processArticle(gctx, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	sinceSave := 0
	total := len(articles)
	for result := range resultCh {
		if result.err != nil {
			if gctx.Err() != nil {
				// Cancellation in flight; drain remaining results.
				continue
			}
			// Failed articles stay out of the processed set, so a resumed
			// run retries them while the category is incomplete.
			stats.PagesFailed++
			if progress != nil {
				progress(ProgressEvent{
					Type:     ProgressArticleFailed,
					Category: category,
					URL:      result.url,
					Error:    result.err,
				})
			}
			continue
		}

		cp.Processed = append(cp.Processed, result.url)
		cp.ArticleIndex = len(cp.Processed)
		cp.PagesCrawled++
		stats.PagesCrawled++
		if result.updated {
			cp.PagesUpdated++
			stats.PagesUpdated++
		} else {
			cp.PagesSkipped++
			stats.PagesSkipped++
		}

		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressArticleCompleted,
				Category:  category,
				URL:       result.url,
				Completed: cp.ArticleIndex,
				Total:     total,
			})
		}

		sinceSave++
		if sinceSave >= checkpointEvery {
			if err := e.saveCheckpoint(context.WithoutCancel(ctx), cp); err != nil {
				return false, err
			}
			sinceSave = 0
		}
	}

	return ctx.Err() != nil, nil
}

// processArticle fetches one article, decides whether it changed, and saves
// it when it did.
func (e *Engine) processArticle(ctx context.Context, url string) articleResult {
	result := articleResult{url: url}

	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			result.err = err
			return result
		}
	}

	html, err := e.renderPage(ctx, url)
	if err != nil {
		result.err = err
		return result
	}

	update, err := e.Detector.NeedsUpdate(ctx, url, html)
	if err != nil {
		result.err = err
		return result
	}
	if !update {
		return result
	}

	doc := &wikivault.Document{
		URL:          url,
		SourceName:   e.SourceName,
		SourceDomain: e.SourceDomain,
		HTML:         html,
		ContentHash:  ContentHash(html),
		FetchedAt:    e.now(),
	}
	if err := e.Documents.SaveDocument(ctx, doc); err != nil {
		result.err = err
		return result
	}

	result.updated = true
	return result
}

// discoverCategories returns the full ordered category list for the site.
func (e *Engine) discoverCategories(ctx context.Context) ([]string, error) {
	if e.Lister != nil {
		return e.Lister.ListCategories(ctx)
	}
	return e.walkPages(ctx, e.StartURL, e.Links.ExtractCategories)
}

// listArticles returns the article URLs belonging to a category.
func (e *Engine) listArticles(ctx context.Context, categoryURL string) ([]string, error) {
	if e.Lister != nil {
		return e.Lister.ListCategoryMembers(ctx, categoryURL)
	}
	return e.walkPages(ctx, categoryURL, e.Links.ExtractArticles)
}

// renderPage fetches the HTML body of a single article.
func (e *Engine) renderPage(ctx context.Context, url string) (string, error) {
	if e.Lister != nil {
		return e.Lister.RenderPage(ctx, url)
	}
	return e.Fetcher.Fetch(ctx, url)
}

// walkPages follows next-page links from startURL, collecting links via
// extract on every page. A visited set guards against pagination cycles:
// the walk terminates as soon as a next link points at a page already seen.
func (e *Engine) walkPages(ctx context.Context, startURL string, extract func(html, baseURL string) []string) ([]string, error) {
	var collected []string
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	pageURL := startURL
	for pageURL != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		visited[pageURL] = true

		if e.Limiter != nil {
			if err := e.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		html, err := e.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
		}

		for _, link := range extract(html, pageURL) {
			if seen[link] {
				continue
			}
			seen[link] = true
			collected = append(collected, link)
		}

		next := e.Links.ExtractNextPage(html, pageURL)
		if next == "" || visited[next] {
			break
		}
		pageURL = next
	}

	return collected, nil
}

// advanceCategory moves the checkpoint past the current category and resets
// per-category progress.
func (e *Engine) advanceCategory(cp *wikivault.Checkpoint) {
	cp.CategoryIndex++
	cp.ArticleIndex = 0
	cp.Processed = nil
}

func (e *Engine) saveCheckpoint(ctx context.Context, cp *wikivault.Checkpoint) error {
	cp.UpdatedAt = e.now()
	return e.Checkpoints.SaveCheckpoint(ctx, cp)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
