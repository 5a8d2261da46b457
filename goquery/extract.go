// Package goquery implements HTML link extraction for MediaWiki-family
// sites using the goquery library.
package goquery

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/wikivault/wikivault"
)

var _ wikivault.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts category, article, and pagination links from
// rendered wiki pages. It recognizes both Fandom and stock MediaWiki
// markup. All methods degrade to empty results on malformed HTML.
type LinkExtractor struct {
	// Whitelist restricts extracted links to the listed domains.
	// Empty allows every domain.
	Whitelist []string
}

// ExtractCategories returns the category page URLs found anywhere on the
// page. Category links are recognized by their "wiki/Category:" path,
// whether relative or absolute.
func (e *LinkExtractor) ExtractCategories(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}

		var full string
		switch {
		case strings.HasPrefix(href, "/wiki/Category:"):
			full = "https://" + wikivault.Hostname(baseURL) + href
		case strings.HasPrefix(href, "http") && strings.Contains(href, "wiki/Category:"):
			full = href
		default:
			return
		}

		if normalized, ok := e.accept(full); ok && !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})

	return links
}

// ExtractNextPage returns the pagination "next" link, or "" when the page
// is the last one. It prefers the MediaWiki mw-nextlink anchor and falls
// back to any anchor whose text contains "next" alongside a digit, the
// shape Fandom uses for its pagination controls.
func (e *LinkExtractor) ExtractNextPage(html, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if href, ok := doc.Find("a.mw-nextlink").First().Attr("href"); ok {
		if normalized, ok := e.accept(e.absolute(href, baseURL)); ok {
			return normalized
		}
	}

	var next string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if !strings.Contains(text, "next") || !containsDigit(text) {
			return true
		}
		href, _ := sel.Attr("href")
		if href == "" {
			return true
		}
		if normalized, ok := e.accept(e.absolute(href, baseURL)); ok {
			next = normalized
			return false
		}
		return true
	})

	return next
}

// ExtractArticles returns the article URLs listed on a category page.
// Articles live under the /wiki/ path; titles containing ":" belong to
// other namespaces and are excluded. Fandom wraps members in a
// category-page__members container; stock MediaWiki uses mw-category
// blocks. Anchors outside those containers are ignored.
func (e *LinkExtractor) ExtractArticles(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	container := doc.Find("div.category-page__members")
	if container.Length() == 0 {
		container = doc.Find("div.mw-category, ul.mw-category, div.mw-category-group, ul.mw-category-group")
	}

	var links []string
	seen := make(map[string]bool)

	container.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")

		var full string
		switch {
		case strings.HasPrefix(href, "/wiki/"):
			if strings.Contains(href[len("/wiki/"):], ":") {
				return
			}
			full = "https://" + wikivault.Hostname(baseURL) + href
		case strings.HasPrefix(href, "http") && strings.Contains(href, "/wiki/"):
			_, title, _ := strings.Cut(href, "/wiki/")
			if title == "" || strings.Contains(title, ":") {
				return
			}
			full = href
		default:
			return
		}

		if normalized, ok := e.accept(full); ok && !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})

	return links
}

// absolute resolves a root-relative href against the base URL's domain.
// Hrefs that are neither root-relative nor absolute are rejected.
func (e *LinkExtractor) absolute(href, baseURL string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return "https://" + wikivault.Hostname(baseURL) + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return ""
	}
}

// accept normalizes a candidate URL and checks it against the whitelist.
func (e *LinkExtractor) accept(raw string) (string, bool) {
	normalized := wikivault.NormalizeURL(raw)
	if normalized == "" || !wikivault.IsAllowedURL(normalized, e.Whitelist) {
		return "", false
	}
	return normalized, true
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}
