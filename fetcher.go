package wikivault

import "context"

// Fetcher retrieves page HTML from URLs. Implementations handle retries,
// backoff and anti-bot challenge resolution internally; a returned error
// means the URL could not be fetched within the configured retry budget.
type Fetcher interface {
	// Fetch retrieves the HTML for a URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases fetcher resources (e.g. a browser process).
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Limiter paces outbound requests against the target site.
type Limiter interface {
	// Wait blocks until the rate limit allows the next request.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context) error
}
