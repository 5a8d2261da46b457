// Package rod provides a browser-based implementation of wikivault.Fetcher
// using Chrome automation. It renders JavaScript, suppresses the signals
// challenge platforms use to detect automation, and waits out interstitial
// challenge pages.
package rod

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/wikivault/wikivault"
)

// challengePollInterval is how often the fetcher re-reads a challenge page
// while waiting for the browser to clear it.
const challengePollInterval = 3 * time.Second

// viewportJitter is the maximum random offset applied to each dimension of
// the configured viewport, so page fingerprints vary between requests.
const viewportJitter = 50

// adDomains are blocked when ad filtering is enabled. Dropping these
// subresources speeds up page loads considerably on Fandom wikis.
var adDomains = []string{
	"doubleclick.net",
	"googlesyndication.com",
	"googleadservices.com",
	"google-analytics.com",
	"googletagmanager.com",
	"facebook.net",
	"adservice.google.com",
}

// Ensure Fetcher implements wikivault.Fetcher at compile time.
var _ wikivault.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation. Each
// Fetch opens a fresh page, which is closed on every exit path. Fetcher is
// safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager     *BrowserManager
	browserCfg  wikivault.BrowserConfig
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	captchaWait time.Duration
	sleep       wikivault.SleepFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBrowserConfig sets viewport dimensions and resource blocking.
func WithBrowserConfig(cfg wikivault.BrowserConfig) Option {
	return func(f *Fetcher) {
		f.browserCfg = cfg
	}
}

// WithUserAgent sets a fixed User-Agent. The sentinel value
// wikivault.UserAgentRotate picks a random agent per page.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets how many times a failed fetch is retried.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBackoffBase sets the initial retry delay.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoffBase = d
	}
}

// WithCaptchaWait bounds how long a challenge page is polled before the
// attempt is abandoned.
func WithCaptchaWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.captchaWait = d
	}
}

// WithSleepFunc replaces the retry sleep, letting tests run instantly.
func WithSleepFunc(fn wikivault.SleepFunc) Option {
	return func(f *Fetcher) {
		f.sleep = fn
	}
}

// NewFetcher creates a browser Fetcher on top of a BrowserManager. The
// manager outlives the fetcher; Close does not shut the browser down.
func NewFetcher(manager *BrowserManager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager: manager,
		browserCfg: wikivault.BrowserConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		},
		maxRetries:  3,
		backoffBase: time.Second,
		captchaWait: 5 * time.Minute,
		sleep:       wikivault.SleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to the URL and returns the rendered HTML. Challenge
// interstitials are waited out; persistent challenges and navigation
// failures are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, wikivault.BackoffDelay(f.backoffBase, attempt-1)); err != nil {
				return "", err
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		html, err := f.fetchOnce(ctx, url)
		if err == nil {
			f.manager.IncrementPageCount()
			return html, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	if wikivault.ErrorCode(lastErr) == wikivault.EBLOCKED {
		return "", lastErr
	}
	return "", wikivault.Errorf(wikivault.EUNAVAILABLE, "fetch %s failed after %d retries: %v", url, f.maxRetries, lastErr)
}

// fetchOnce performs a single navigation on a fresh page.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := f.preparePage(page); err != nil {
		return "", err
	}

	if f.browserCfg.BlockImages || f.browserCfg.BlockAds {
		router := page.HijackRequests()
		if err := router.Add("*", "", f.blockResources); err != nil {
			return "", err
		}
		go router.Run()
		defer router.Stop()
	}

	// Fandom keeps background requests open, so waiting for the full load
	// event is unstable. DOMContentLoaded is enough to read the markup.
	wait := page.WaitEvent(&proto.PageDomContentEventFired{})
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	wait()

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	if wikivault.IsChallengePage(html) {
		html, err = f.awaitChallenge(ctx, page)
		if err != nil {
			return "", err
		}
	}

	// Settle dynamic content. Failure here is not fatal.
	_ = page.Timeout(5 * time.Second).WaitDOMStable(time.Second, 0)

	html, err = page.HTML()
	if err != nil {
		return "", err
	}
	if wikivault.IsChallengePage(html) {
		return "", wikivault.Errorf(wikivault.EBLOCKED, "challenge page served for %s", url)
	}
	return html, nil
}

// preparePage applies per-page stealth measures: a randomized viewport, a
// User-Agent override, and removal of the navigator.webdriver flag.
func (f *Fetcher) preparePage(page *rod.Page) error {
	width := f.browserCfg.ViewportWidth + rand.Intn(2*viewportJitter+1) - viewportJitter
	height := f.browserCfg.ViewportHeight + rand.Intn(2*viewportJitter+1) - viewportJitter
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      f.nextUserAgent(),
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		return err
	}

	_, err := page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`)
	return err
}

// blockResources drops image and ad/analytics subresources.
func (f *Fetcher) blockResources(hj *rod.Hijack) {
	if f.browserCfg.BlockImages && hj.Request.Type() == proto.NetworkResourceTypeImage {
		hj.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	if f.browserCfg.BlockAds && isAdURL(hj.Request.URL().String()) {
		hj.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	hj.ContinueRequest(&proto.FetchContinueRequest{})
}

// awaitChallenge polls the page until the challenge interstitial clears or
// the wait budget runs out.
func (f *Fetcher) awaitChallenge(ctx context.Context, page *rod.Page) (string, error) {
	deadline := time.Now().Add(challengeWait(f.captchaWait))
	for {
		html, err := page.HTML()
		if err != nil {
			return "", err
		}
		if !wikivault.IsChallengePage(html) {
			return html, nil
		}
		if time.Now().After(deadline) {
			return "", wikivault.Errorf(wikivault.EBLOCKED, "challenge did not clear within %s", challengeWait(f.captchaWait))
		}
		if err := f.sleep(ctx, challengePollInterval); err != nil {
			return "", err
		}
	}
}

func (f *Fetcher) nextUserAgent() string {
	switch f.userAgent {
	case wikivault.UserAgentRotate:
		return wikivault.DefaultUserAgents[rand.Intn(len(wikivault.DefaultUserAgents))]
	case "":
		return wikivault.DefaultUserAgents[0]
	default:
		return f.userAgent
	}
}

// challengeWait clamps the configured challenge wait to a sane polling
// window. Shorter than 15s gives the browser no chance to clear the
// challenge; longer than 120s just stalls the crawl.
func challengeWait(configured time.Duration) time.Duration {
	const (
		minWait = 15 * time.Second
		maxWait = 120 * time.Second
	)
	if configured < minWait {
		return minWait
	}
	if configured > maxWait {
		return maxWait
	}
	return configured
}

func isAdURL(url string) bool {
	for _, domain := range adDomains {
		if strings.Contains(url, domain) {
			return true
		}
	}
	return false
}

// Close releases fetcher resources. The browser itself belongs to the
// BrowserManager and is closed there.
func (f *Fetcher) Close() error {
	return nil
}
