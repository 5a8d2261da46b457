package mock

import "github.com/wikivault/wikivault"

var _ wikivault.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of wikivault.LinkExtractor.
type LinkExtractor struct {
	ExtractCategoriesFn func(html, baseURL string) []string
	ExtractNextPageFn   func(html, baseURL string) string
	ExtractArticlesFn   func(html, baseURL string) []string
}

func (e *LinkExtractor) ExtractCategories(html, baseURL string) []string {
	return e.ExtractCategoriesFn(html, baseURL)
}

func (e *LinkExtractor) ExtractNextPage(html, baseURL string) string {
	if e.ExtractNextPageFn == nil {
		return ""
	}
	return e.ExtractNextPageFn(html, baseURL)
}

func (e *LinkExtractor) ExtractArticles(html, baseURL string) []string {
	return e.ExtractArticlesFn(html, baseURL)
}
