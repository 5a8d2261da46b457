package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/wikivault/wikivault"
)

// ContentHash computes a deterministic digest of raw page bytes using
// xxhash. Any byte-level change to a page produces a different hash.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// ChangeDetector decides whether a freshly fetched page must overwrite the
// stored copy. The policy, in order: a page with no stored record always
// needs an update; a changed content hash needs an update; an unchanged page
// older than MaxAge needs an update; everything else is skipped.
type ChangeDetector struct {
	Documents    wikivault.DocumentService
	SourceDomain string
	MaxAge       time.Duration

	// Now is the clock used for age checks. Defaults to time.Now.
	Now func() time.Time
}

// NeedsUpdate reports whether the stored record for (url, SourceDomain) is
// missing, stale, or differs from html. The document store is only written
// when this returns true.
func (d *ChangeDetector) NeedsUpdate(ctx context.Context, url, html string) (bool, error) {
	stored, err := d.Documents.FindDocumentByURL(ctx, url, d.SourceDomain)
	if wikivault.ErrorCode(err) == wikivault.ENOTFOUND {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if stored.ContentHash != ContentHash(html) {
		return true, nil
	}

	now := d.Now
	if now == nil {
		now = time.Now
	}
	if now().Sub(stored.FetchedAt) > d.MaxAge {
		return true, nil
	}

	return false, nil
}
