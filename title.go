package wikivault

import (
	"net/url"
	"strings"
)

// CategoryPrefix is the namespace prefix MediaWiki uses for category pages.
const CategoryPrefix = "Category:"

// TitleToURL converts a MediaWiki page title into its canonical wiki URL on
// the given domain. Spaces become underscores and the result is
// percent-encoded, mirroring how MediaWiki itself links pages.
func TitleToURL(domain, title string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return "https://" + domain + "/wiki/" + url.PathEscape(normalized)
}

// URLToTitle converts a wiki URL back into a MediaWiki page title: the path
// segment after /wiki/ is percent-decoded and underscores become spaces.
// TitleToURL and URLToTitle round-trip for ordinary page titles.
func URLToTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	p := u.Path
	if i := strings.Index(p, "/wiki/"); i != -1 {
		p = p[i+len("/wiki/"):]
	} else {
		p = strings.Trim(p, "/")
	}

	decoded, err := url.PathUnescape(p)
	if err != nil {
		decoded = p
	}
	return strings.ReplaceAll(decoded, "_", " ")
}

// CategoryTitle ensures a title carries the category namespace prefix.
func CategoryTitle(title string) string {
	if strings.HasPrefix(title, CategoryPrefix) {
		return title
	}
	return CategoryPrefix + title
}
