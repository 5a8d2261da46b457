package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/crawl"
	"github.com/wikivault/wikivault/mock"
)

// memCheckpoints is an in-memory checkpoint store for engine tests.
type memCheckpoints struct {
	mu    sync.Mutex
	cp    *wikivault.Checkpoint
	saves int
}

func (m *memCheckpoints) service() *mock.CheckpointService {
	return &mock.CheckpointService{
		SaveCheckpointFn: func(_ context.Context, cp *wikivault.Checkpoint) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			clone := *cp
			clone.Categories = append([]string(nil), cp.Categories...)
			clone.Processed = append([]string(nil), cp.Processed...)
			m.cp = &clone
			m.saves++
			return nil
		},
		LoadCheckpointFn: func(_ context.Context) (*wikivault.Checkpoint, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.cp == nil {
				return nil, wikivault.Errorf(wikivault.ENOTFOUND, "Checkpoint not found.")
			}
			clone := *m.cp
			clone.Categories = append([]string(nil), m.cp.Categories...)
			clone.Processed = append([]string(nil), m.cp.Processed...)
			return &clone, nil
		},
		ClearCheckpointFn: func(_ context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.cp = nil
			return nil
		},
	}
}

// emptyDocuments reports every lookup as not found, so every page counts as new.
func emptyDocuments(saved *[]*wikivault.Document) *mock.DocumentService {
	var mu sync.Mutex
	return &mock.DocumentService{
		SaveDocumentFn: func(_ context.Context, doc *wikivault.Document) error {
			mu.Lock()
			defer mu.Unlock()
			*saved = append(*saved, doc)
			return nil
		},
		FindDocumentByURLFn: func(_ context.Context, url, sourceDomain string) (*wikivault.Document, error) {
			return nil, wikivault.Errorf(wikivault.ENOTFOUND, "Document not found.")
		},
	}
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	t.Run("fresh crawl processes every category member", func(t *testing.T) {
		t.Parallel()

		articles := map[string][]string{
			"https://wiki.example.com/wiki/category:alpha": {
				"https://wiki.example.com/wiki/a1",
				"https://wiki.example.com/wiki/a2",
			},
			"https://wiki.example.com/wiki/category:beta": {
				"https://wiki.example.com/wiki/b1",
			},
		}

		var saved []*wikivault.Document
		store := &memCheckpoints{}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractCategoriesFn: func(_, _ string) []string {
					return []string{
						"https://wiki.example.com/wiki/category:alpha",
						"https://wiki.example.com/wiki/category:beta",
					}
				},
				ExtractArticlesFn: func(_, baseURL string) []string {
					return articles[baseURL]
				},
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceName:   "Example Wiki",
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{
			Documents:    e.Documents,
			SourceDomain: "wiki.example.com",
			MaxAge:       24 * time.Hour,
		}
		e.StartURL = "https://wiki.example.com/wiki/special:categories"

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.Categories)
		assert.Equal(t, 3, stats.PagesCrawled)
		assert.Equal(t, 3, stats.PagesUpdated)
		assert.Equal(t, 0, stats.PagesSkipped)
		assert.False(t, stats.Stopped)

		require.Len(t, saved, 3)
		assert.Equal(t, "https://wiki.example.com/wiki/a1", saved[0].URL)
		assert.Equal(t, "wiki.example.com", saved[0].SourceDomain)
		assert.NotEmpty(t, saved[0].ContentHash)

		require.NotNil(t, store.cp)
		assert.Equal(t, 2, store.cp.CategoryIndex)
		assert.Empty(t, store.cp.Processed)
	})

	t.Run("resume skips processed articles and finishes the rest", func(t *testing.T) {
		t.Parallel()

		store := &memCheckpoints{cp: &wikivault.Checkpoint{
			CategoryIndex: 0,
			ArticleIndex:  1,
			Categories: []string{
				"https://wiki.example.com/wiki/category:alpha",
				"https://wiki.example.com/wiki/category:beta",
			},
			Processed:    []string{"https://wiki.example.com/wiki/a1"},
			PagesCrawled: 1,
			PagesUpdated: 1,
		}}

		var mu sync.Mutex
		var fetched []string
		var saved []*wikivault.Document
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					mu.Lock()
					fetched = append(fetched, url)
					mu.Unlock()
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractCategoriesFn: func(_, _ string) []string {
					t.Error("discovery must not run when a checkpoint exists")
					return nil
				},
				ExtractArticlesFn: func(_, baseURL string) []string {
					if baseURL == "https://wiki.example.com/wiki/category:alpha" {
						return []string{
							"https://wiki.example.com/wiki/a1",
							"https://wiki.example.com/wiki/a2",
						}
					}
					return []string{"https://wiki.example.com/wiki/b1"}
				},
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceName:   "Example Wiki",
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{
			Documents:    e.Documents,
			SourceDomain: "wiki.example.com",
			MaxAge:       24 * time.Hour,
		}

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.NotContains(t, fetched, "https://wiki.example.com/wiki/a1")
		assert.Contains(t, fetched, "https://wiki.example.com/wiki/a2")
		assert.Contains(t, fetched, "https://wiki.example.com/wiki/b1")

		// Carried-over counters plus the two newly processed pages.
		assert.Equal(t, 3, stats.PagesCrawled)
		assert.Equal(t, 3, stats.PagesUpdated)
		assert.False(t, stats.Stopped)
	})

	t.Run("terminates when pagination links form a cycle", func(t *testing.T) {
		t.Parallel()

		const (
			page1 = "https://wiki.example.com/wiki/special:categories"
			page2 = "https://wiki.example.com/wiki/special:categories?page=2"
		)

		var mu sync.Mutex
		listingFetches := 0
		var saved []*wikivault.Document
		store := &memCheckpoints{}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if url == page1 || url == page2 {
						mu.Lock()
						listingFetches++
						mu.Unlock()
					}
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractCategoriesFn: func(_, baseURL string) []string {
					if baseURL == page1 {
						return []string{"https://wiki.example.com/wiki/category:alpha"}
					}
					return []string{"https://wiki.example.com/wiki/category:alpha"}
				},
				ExtractNextPageFn: func(_, baseURL string) string {
					switch baseURL {
					case page1:
						return page2
					case page2:
						return page1 // cycle back
					}
					return ""
				},
				ExtractArticlesFn: func(_, _ string) []string { return nil },
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{Documents: e.Documents, SourceDomain: "wiki.example.com", MaxAge: time.Hour}
		e.StartURL = page1

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 2, listingFetches)
		assert.Equal(t, 1, stats.Categories)
	})

	t.Run("unchanged content increments the skip counter", func(t *testing.T) {
		t.Parallel()

		const html = "<html>stable</html>"
		now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

		saveCalls := 0
		store := &memCheckpoints{cp: &wikivault.Checkpoint{
			Categories: []string{"https://wiki.example.com/wiki/category:alpha"},
		}}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) { return html, nil },
			},
			Links: &mock.LinkExtractor{
				ExtractArticlesFn: func(_, _ string) []string {
					return []string{"https://wiki.example.com/wiki/a1"}
				},
				ExtractCategoriesFn: func(_, _ string) []string { return nil },
			},
			Documents: &mock.DocumentService{
				SaveDocumentFn: func(_ context.Context, _ *wikivault.Document) error {
					saveCalls++
					return nil
				},
				FindDocumentByURLFn: func(_ context.Context, url, _ string) (*wikivault.Document, error) {
					return &wikivault.Document{
						URL:         url,
						ContentHash: crawl.ContentHash(html),
						FetchedAt:   now.Add(-time.Hour),
					}, nil
				},
			},
			Checkpoints:  store.service(),
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
			Now:          func() time.Time { return now },
		}
		e.Detector = &crawl.ChangeDetector{
			Documents:    e.Documents,
			SourceDomain: "wiki.example.com",
			MaxAge:       24 * time.Hour,
			Now:          e.Now,
		}

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.PagesCrawled)
		assert.Equal(t, 0, stats.PagesUpdated)
		assert.Equal(t, 1, stats.PagesSkipped)
		assert.Equal(t, 0, saveCalls)
	})

	t.Run("failed article is excluded from the processed set", func(t *testing.T) {
		t.Parallel()

		var saved []*wikivault.Document
		var failedEvents []crawl.ProgressEvent
		store := &memCheckpoints{cp: &wikivault.Checkpoint{
			Categories: []string{"https://wiki.example.com/wiki/category:alpha"},
		}}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if url == "https://wiki.example.com/wiki/a2" {
						return "", wikivault.Errorf(wikivault.EUNAVAILABLE, "Service unavailable.")
					}
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractArticlesFn: func(_, _ string) []string {
					return []string{
						"https://wiki.example.com/wiki/a1",
						"https://wiki.example.com/wiki/a2",
						"https://wiki.example.com/wiki/a3",
					}
				},
				ExtractCategoriesFn: func(_, _ string) []string { return nil },
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{Documents: e.Documents, SourceDomain: "wiki.example.com", MaxAge: time.Hour}

		stats, err := e.Run(context.Background(), func(event crawl.ProgressEvent) {
			if event.Type == crawl.ProgressArticleFailed {
				failedEvents = append(failedEvents, event)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 2, stats.PagesCrawled)
		assert.Equal(t, 1, stats.PagesFailed)
		require.Len(t, failedEvents, 1)
		assert.Equal(t, "https://wiki.example.com/wiki/a2", failedEvents[0].URL)

		// The category still completed, so the failure is not retried.
		assert.Equal(t, 1, store.cp.CategoryIndex)
		assert.Empty(t, store.cp.Processed)
	})

	t.Run("cancellation stops at an article boundary and checkpoints progress", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var saved []*wikivault.Document
		store := &memCheckpoints{cp: &wikivault.Checkpoint{
			Categories: []string{
				"https://wiki.example.com/wiki/category:alpha",
				"https://wiki.example.com/wiki/category:beta",
			},
		}}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if url == "https://wiki.example.com/wiki/a1" {
						// Stop the run after this article completes.
						defer cancel()
					}
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractArticlesFn: func(_, _ string) []string {
					return []string{
						"https://wiki.example.com/wiki/a1",
						"https://wiki.example.com/wiki/a2",
					}
				},
				ExtractCategoriesFn: func(_, _ string) []string { return nil },
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{Documents: e.Documents, SourceDomain: "wiki.example.com", MaxAge: time.Hour}

		stats, err := e.Run(ctx, nil)

		require.NoError(t, err)
		assert.True(t, stats.Stopped)

		require.NotNil(t, store.cp)
		assert.Equal(t, 0, store.cp.CategoryIndex)
		assert.Equal(t, []string{"https://wiki.example.com/wiki/a1"}, store.cp.Processed)
		assert.Equal(t, 1, store.cp.ArticleIndex)
	})

	t.Run("checkpoints periodically inside a large category", func(t *testing.T) {
		t.Parallel()

		urls := make([]string, 25)
		for i := range urls {
			urls[i] = "https://wiki.example.com/wiki/page" + string(rune('a'+i))
		}

		var saved []*wikivault.Document
		store := &memCheckpoints{cp: &wikivault.Checkpoint{
			Categories: []string{"https://wiki.example.com/wiki/category:alpha"},
		}}
		var processedAtSave []int
		svc := store.service()
		baseSave := svc.SaveCheckpointFn
		svc.SaveCheckpointFn = func(ctx context.Context, cp *wikivault.Checkpoint) error {
			processedAtSave = append(processedAtSave, len(cp.Processed))
			return baseSave(ctx, cp)
		}

		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					return "<html>" + url + "</html>", nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractArticlesFn:   func(_, _ string) []string { return urls },
				ExtractCategoriesFn: func(_, _ string) []string { return nil },
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  svc,
			SourceDomain: "wiki.example.com",
			Concurrency:  1,
		}
		e.Detector = &crawl.ChangeDetector{Documents: e.Documents, SourceDomain: "wiki.example.com", MaxAge: time.Hour}

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 25, stats.PagesCrawled)
		// Two intermediate saves at 10 and 20 processed articles, then the
		// category-completion and final saves with the set reset.
		assert.Equal(t, []int{10, 20, 0, 0}, processedAtSave)
	})

	t.Run("uses the page lister when configured", func(t *testing.T) {
		t.Parallel()

		var saved []*wikivault.Document
		store := &memCheckpoints{}
		e := &crawl.Engine{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					t.Errorf("direct fetch of %s must not happen on the API path", url)
					return "", nil
				},
			},
			Lister: &mock.PageLister{
				ListCategoriesFn: func(_ context.Context) ([]string, error) {
					return []string{"https://wiki.example.com/wiki/category:alpha"}, nil
				},
				ListCategoryMembersFn: func(_ context.Context, _ string) ([]string, error) {
					return []string{"https://wiki.example.com/wiki/a1"}, nil
				},
				RenderPageFn: func(_ context.Context, url string) (string, error) {
					return "<html>" + url + "</html>", nil
				},
			},
			Documents:    emptyDocuments(&saved),
			Checkpoints:  store.service(),
			SourceDomain: "wiki.example.com",
			Concurrency:  2,
		}
		e.Detector = &crawl.ChangeDetector{Documents: e.Documents, SourceDomain: "wiki.example.com", MaxAge: time.Hour}

		stats, err := e.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.PagesCrawled)
		require.Len(t, saved, 1)
		assert.Equal(t, "https://wiki.example.com/wiki/a1", saved[0].URL)
	})
}
