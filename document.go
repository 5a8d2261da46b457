package wikivault

import (
	"context"
	"time"
)

// Document represents a harvested wiki page. Documents are keyed by
// (URL, SourceDomain): the same URL harvested from two different sources is
// two distinct records. Rows are created on first successful fetch and
// updated in place afterwards; the crawl engine never deletes them.
type Document struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	SourceName   string    `json:"sourceName"`
	SourceDomain string    `json:"sourceDomain"`
	HTML         string    `json:"html"`
	ContentHash  string    `json:"contentHash"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.SourceDomain == "" {
		return Errorf(EINVALID, "document source domain required")
	}
	return nil
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	SourceDomain *string `json:"sourceDomain"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DocumentService represents the durable document store. Saves are
// idempotent upserts on (URL, SourceDomain), safe to retry.
type DocumentService interface {
	// SaveDocument inserts or overwrites the record for
	// (doc.URL, doc.SourceDomain).
	SaveDocument(ctx context.Context, doc *Document) error

	// FindDocumentByURL retrieves a document by its composite key.
	// Returns ENOTFOUND if no record exists.
	FindDocumentByURL(ctx context.Context, url, sourceDomain string) (*Document, error)

	// FindDocuments retrieves documents matching the filter,
	// ordered by fetch time descending.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// CountDocuments returns the total number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
