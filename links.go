package wikivault

// LinkExtractor produces candidate links from a fetched HTML page. All
// methods are pure: they normalize results, enforce the domain whitelist,
// de-duplicate within a single call, and degrade to empty results on
// malformed markup rather than failing the crawl.
type LinkExtractor interface {
	// ExtractCategories returns category page URLs found on a
	// category-listing page.
	ExtractCategories(html, baseURL string) []string

	// ExtractNextPage returns the pagination "next" link, or "" when the
	// page is the last one.
	ExtractNextPage(html, baseURL string) string

	// ExtractArticles returns article URLs found on a category page.
	// Special and meta pages (namespaced titles) are excluded.
	ExtractArticles(html, baseURL string) []string
}
