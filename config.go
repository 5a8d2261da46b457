package wikivault

import (
	"strings"
	"time"
)

// Fetch method names accepted by Config.FetchMethod.
const (
	FetchDirect  = "direct"
	FetchBrowser = "browser"
)

// BrowserConfig holds the options for the browser-driven fetcher.
type BrowserConfig struct {
	Headless       bool `mapstructure:"headless"`
	ViewportWidth  int  `mapstructure:"viewport_width"`
	ViewportHeight int  `mapstructure:"viewport_height"`
	BlockImages    bool `mapstructure:"block_images"`
	BlockAds       bool `mapstructure:"block_ads"`
}

// Config holds a complete crawl run configuration. It is immutable for the
// duration of a run; the viper package loads it from a YAML file.
type Config struct {
	// Target site.
	StartURL        string   `mapstructure:"start_url"`
	DomainWhitelist []string `mapstructure:"domain_whitelist"`
	SourceName      string   `mapstructure:"source_name"`
	SourceDomain    string   `mapstructure:"source_domain"`

	// Traversal: HTML scraping or the MediaWiki API.
	UseAPI       bool   `mapstructure:"use_api"`
	APIEndpoint  string `mapstructure:"api_endpoint"`
	APIPageLimit int    `mapstructure:"api_page_limit"`

	// Fetching.
	FetchMethod        string        `mapstructure:"fetch_method"`
	DelaySeconds       float64       `mapstructure:"delay_seconds"`
	TimeoutSeconds     int           `mapstructure:"timeout_seconds"`
	MaxRetries         int           `mapstructure:"max_retries"`
	CaptchaWaitMinutes int           `mapstructure:"captcha_wait_minutes"`
	UserAgent          string        `mapstructure:"user_agent"`
	Browser            BrowserConfig `mapstructure:"browser"`

	// Crawl behaviour.
	RecrawlAgeDays int `mapstructure:"recrawl_age_days"`
	Concurrency    int `mapstructure:"concurrency"`

	// Storage.
	CrawlerID      string `mapstructure:"crawler_id"`
	DatabasePath   string `mapstructure:"database_path"`
	CheckpointPath string `mapstructure:"checkpoint_path"`
}

// UserAgentRotate is the sentinel UserAgent value that enables per-request
// rotation from DefaultUserAgents.
const UserAgentRotate = "rotate"

// DefaultUserAgents is the pool of browser User-Agent strings used when
// rotation is enabled and for browser context randomization.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// Validate returns an EINVALID error if any required field is missing or any
// value is out of range. Validation failures are fatal: the engine never
// starts crawling on an invalid configuration.
func (c *Config) Validate() error {
	if c.SourceDomain == "" {
		return Errorf(EINVALID, "source_domain required")
	}
	if c.SourceName == "" {
		return Errorf(EINVALID, "source_name required")
	}
	if !c.UseAPI && c.StartURL == "" {
		return Errorf(EINVALID, "start_url required for HTML traversal")
	}
	if c.UseAPI && c.APIEndpoint == "" {
		return Errorf(EINVALID, "api_endpoint required for API traversal")
	}
	switch c.FetchMethod {
	case FetchDirect, FetchBrowser:
	default:
		return Errorf(EINVALID, "fetch_method must be %q or %q, got %q", FetchDirect, FetchBrowser, c.FetchMethod)
	}
	if c.DelaySeconds < 0 {
		return Errorf(EINVALID, "delay_seconds must not be negative")
	}
	if c.TimeoutSeconds <= 0 {
		return Errorf(EINVALID, "timeout_seconds must be positive")
	}
	if c.MaxRetries < 0 {
		return Errorf(EINVALID, "max_retries must not be negative")
	}
	if c.RecrawlAgeDays <= 0 {
		return Errorf(EINVALID, "recrawl_age_days must be positive")
	}
	if c.Concurrency <= 0 {
		return Errorf(EINVALID, "concurrency must be positive")
	}
	for _, entry := range c.DomainWhitelist {
		if strings.TrimSpace(entry) == "" {
			return Errorf(EINVALID, "domain_whitelist entries must not be blank")
		}
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the inter-request pause as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// CaptchaWait returns the non-interactive challenge wait as a duration.
func (c *Config) CaptchaWait() time.Duration {
	return time.Duration(c.CaptchaWaitMinutes) * time.Minute
}

// RecrawlAge returns the maximum stored-document age before a re-fetch
// overwrites it even when the content hash is unchanged.
func (c *Config) RecrawlAge() time.Duration {
	return time.Duration(c.RecrawlAgeDays) * 24 * time.Hour
}
