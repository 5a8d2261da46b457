package resty

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wikivault/wikivault"
)

// DefaultPageLimit is the number of results requested per API page.
const DefaultPageLimit = 500

// Ensure Client implements wikivault.PageLister at compile time.
var _ wikivault.PageLister = (*Client)(nil)

// Client enumerates wiki content through the MediaWiki action API instead
// of scraping rendered pages. Listing calls follow the server's
// continuation tokens; a canceled context stops the walk and returns what
// was accumulated so far.
type Client struct {
	client    *resty.Client
	endpoint  string
	domain    string
	whitelist []string
	pageLimit int
	limiter   wikivault.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientTimeout sets the per-request timeout. Defaults to
// DefaultFetchTimeout.
func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.SetTimeout(d)
	}
}

// WithWhitelist restricts returned URLs to the listed domains.
func WithWhitelist(domains []string) ClientOption {
	return func(c *Client) {
		c.whitelist = domains
	}
}

// WithPageLimit sets the number of results requested per API page.
func WithPageLimit(n int) ClientOption {
	return func(c *Client) {
		c.pageLimit = n
	}
}

// WithLimiter paces API requests with a shared rate limiter.
func WithLimiter(l wikivault.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a MediaWiki API client for the given endpoint
// (typically https://<domain>/api.php). The domain is used to build
// canonical /wiki/ URLs from page titles.
func NewClient(endpoint, domain string, opts ...ClientOption) *Client {
	c := &Client{
		client:    resty.New().SetTimeout(DefaultFetchTimeout),
		endpoint:  endpoint,
		domain:    domain,
		pageLimit: DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the error object MediaWiki embeds in an otherwise 200
// response.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type apiResponse struct {
	Error    *apiError `json:"error"`
	Continue struct {
		AcContinue string `json:"accontinue"`
		CmContinue string `json:"cmcontinue"`
	} `json:"continue"`
	Query struct {
		AllCategories []struct {
			Category string `json:"category"`
		} `json:"allcategories"`
		CategoryMembers []struct {
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
}

// ListCategories returns the normalized URL of every category on the wiki.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	seen := make(map[string]bool)

	acContinue := ""
	for {
		params := map[string]string{
			"action":  "query",
			"list":    "allcategories",
			"aclimit": strconv.Itoa(c.pageLimit),
		}
		if acContinue != "" {
			params["accontinue"] = acContinue
		}

		payload, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, item := range payload.Query.AllCategories {
			if item.Category == "" {
				continue
			}
			full := wikivault.TitleToURL(c.domain, wikivault.CategoryTitle(item.Category))
			normalized := wikivault.NormalizeURL(full)
			if normalized == "" || !wikivault.IsAllowedURL(normalized, c.whitelist) || seen[normalized] {
				continue
			}
			seen[normalized] = true
			categories = append(categories, normalized)
		}

		acContinue = payload.Continue.AcContinue
		if acContinue == "" {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return categories, nil
}

// ListCategoryMembers returns the normalized URLs of the main-namespace
// articles in the given category. Pages in other namespaces (files,
// templates, subcategories) are excluded.
func (c *Client) ListCategoryMembers(ctx context.Context, categoryURL string) ([]string, error) {
	title := wikivault.CategoryTitle(wikivault.URLToTitle(categoryURL))

	var articles []string
	seen := make(map[string]bool)

	cmContinue := ""
	for {
		params := map[string]string{
			"action":  "query",
			"list":    "categorymembers",
			"cmtitle": title,
			"cmlimit": strconv.Itoa(c.pageLimit),
		}
		if cmContinue != "" {
			params["cmcontinue"] = cmContinue
		}

		payload, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, item := range payload.Query.CategoryMembers {
			if item.NS != 0 || item.Title == "" {
				continue
			}
			full := wikivault.TitleToURL(c.domain, item.Title)
			normalized := wikivault.NormalizeURL(full)
			if normalized == "" || !wikivault.IsAllowedURL(normalized, c.whitelist) || seen[normalized] {
				continue
			}
			seen[normalized] = true
			articles = append(articles, normalized)
		}

		cmContinue = payload.Continue.CmContinue
		if cmContinue == "" {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return articles, nil
}

// RenderPage returns the rendered HTML of an article via action=parse,
// following redirects to the canonical page.
func (c *Client) RenderPage(ctx context.Context, articleURL string) (string, error) {
	payload, err := c.get(ctx, map[string]string{
		"action":    "parse",
		"page":      wikivault.URLToTitle(articleURL),
		"prop":      "text",
		"redirects": "1",
	})
	if err != nil {
		return "", err
	}
	if payload.Parse.Text == "" {
		return "", wikivault.Errorf(wikivault.ENOTFOUND, "no rendered text for %s", articleURL)
	}
	return payload.Parse.Text, nil
}

// get performs one paced API request and decodes the JSON envelope.
func (c *Client) get(ctx context.Context, params map[string]string) (*apiResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var payload apiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("format", "json").
		SetQueryParam("formatversion", "2").
		SetResult(&payload).
		Get(c.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, wikivault.Errorf(wikivault.EUNAVAILABLE, "wiki api request failed: %v", err)
	}
	if resp.IsError() {
		return nil, wikivault.Errorf(wikivault.EUNAVAILABLE, "wiki api returned HTTP %d", resp.StatusCode())
	}
	if payload.Error != nil {
		return nil, wikivault.Errorf(wikivault.EINTERNAL, "wiki api error %s: %s", payload.Error.Code, payload.Error.Info)
	}
	return &payload, nil
}
