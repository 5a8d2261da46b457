package crawl

import (
	"time"

	"github.com/wikivault/wikivault"
	"golang.org/x/time/rate"
)

// NewPacer returns a limiter allowing one request per delay with no
// bursting. A zero or negative delay disables pacing.
func NewPacer(delay time.Duration) wikivault.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
