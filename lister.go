package wikivault

import "context"

// PageLister is the structured alternative to HTML scraping: it enumerates
// categories and their members through a wiki's API and returns rendered
// article HTML keyed by page title. Implementations follow server-supplied
// continuation tokens internally and stop early when the context is
// canceled, returning whatever was accumulated.
type PageLister interface {
	// ListCategories returns the normalized URLs of every category.
	ListCategories(ctx context.Context) ([]string, error)

	// ListCategoryMembers returns the normalized URLs of the articles in
	// the category identified by its page URL.
	ListCategoryMembers(ctx context.Context, categoryURL string) ([]string, error)

	// RenderPage returns the rendered HTML of the article identified by
	// its page URL.
	RenderPage(ctx context.Context, articleURL string) (string, error)
}
