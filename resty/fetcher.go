// Package resty provides a direct HTTP implementation of wikivault.Fetcher
// and a MediaWiki API client built on the resty library.
package resty

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wikivault/wikivault"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultBackoffBase is the first retry delay; subsequent retries double it.
const DefaultBackoffBase = time.Second

// DefaultCaptchaWait is how long a non-interactive run waits before
// retrying a challenged URL.
const DefaultCaptchaWait = 5 * time.Minute

// ResolveFunc is called when a challenge page is detected, giving an
// interactive operator the chance to solve it out of band. Returning nil
// retries the URL immediately.
type ResolveFunc func(ctx context.Context, url string) error

// Ensure Fetcher implements wikivault.Fetcher at compile time.
var _ wikivault.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content over plain HTTP requests. It does not
// execute JavaScript and is suitable for wikis that serve complete markup.
// Transient errors and challenge pages are retried up to maxRetries times.
type Fetcher struct {
	client      *resty.Client
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	captchaWait time.Duration
	resolve     ResolveFunc
	sleep       wikivault.SleepFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.SetTimeout(d)
	}
}

// WithUserAgent sets a fixed User-Agent header. The sentinel value
// wikivault.UserAgentRotate picks a random agent from the default pool on
// every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets how many times a failed or challenged request is
// retried before giving up.
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

// WithCaptchaWait sets the non-interactive wait before retrying a
// challenged URL.
func WithCaptchaWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.captchaWait = d
	}
}

// WithResolveFunc installs an interactive challenge resolution hook.
func WithResolveFunc(fn ResolveFunc) Option {
	return func(f *Fetcher) {
		f.resolve = fn
	}
}

// WithSleepFunc replaces the retry sleep, letting tests run instantly.
func WithSleepFunc(fn wikivault.SleepFunc) Option {
	return func(f *Fetcher) {
		f.sleep = fn
	}
}

// NewFetcher creates a direct HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      resty.New().SetTimeout(DefaultFetchTimeout),
		maxRetries:  3,
		backoffBase: DefaultBackoffBase,
		captchaWait: DefaultCaptchaWait,
		sleep:       wikivault.SleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML content from the given URL. Challenge pages are
// detected before the status code is inspected, so a 403 serving a CAPTCHA
// is handled as a challenge rather than a plain HTTP failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	for attempt := 0; ; attempt++ {
		resp, err := f.client.R().
			SetContext(ctx).
			SetHeader("User-Agent", f.nextUserAgent()).
			Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt >= f.maxRetries {
				return "", wikivault.Errorf(wikivault.EUNAVAILABLE, "fetch %s failed after %d retries: %v", url, f.maxRetries, err)
			}
			if serr := f.sleep(ctx, wikivault.BackoffDelay(f.backoffBase, attempt)); serr != nil {
				return "", serr
			}
			continue
		}

		body := string(resp.Body())

		if wikivault.IsBlockedResponse(body, resp.StatusCode()) {
			if attempt >= f.maxRetries {
				return "", wikivault.Errorf(wikivault.EBLOCKED, "challenge persists at %s after %d retries", url, f.maxRetries)
			}
			if f.resolve != nil {
				if rerr := f.resolve(ctx, url); rerr != nil {
					return "", rerr
				}
			} else if serr := f.sleep(ctx, f.captchaWait); serr != nil {
				return "", serr
			}
			continue
		}

		if resp.StatusCode() != http.StatusOK {
			if attempt >= f.maxRetries {
				return "", wikivault.Errorf(wikivault.EUNAVAILABLE, "fetch %s: HTTP %d after %d retries", url, resp.StatusCode(), f.maxRetries)
			}
			if serr := f.sleep(ctx, wikivault.BackoffDelay(f.backoffBase, attempt)); serr != nil {
				return "", serr
			}
			continue
		}

		return body, nil
	}
}

// Close releases resources. The underlying HTTP client needs no explicit
// cleanup.
func (f *Fetcher) Close() error {
	return nil
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
