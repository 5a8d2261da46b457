package wikivault

import (
	"context"
	"time"
)

// Checkpoint is a durable snapshot of crawl position. It carries enough to
// resume an interrupted run without re-discovering categories: the ordered
// category list, the index of the category being worked, and the set of
// article URLs already finished within it. Workers may complete articles out
// of order, so the processed set, not an index, is authoritative;
// ArticleIndex mirrors its size for reporting.
//
// Inlining Categories keeps resume to a single read. That is fine up to the
// low tens of thousands of URLs; past that the list should move to its own
// store and the snapshot hold a reference.
type Checkpoint struct {
	CategoryIndex int      `json:"categoryIndex"`
	ArticleIndex  int      `json:"articleIndex"`
	Categories    []string `json:"categories,omitempty"`
	Processed     []string `json:"processed,omitempty"`

	PagesCrawled int `json:"pagesCrawled"`
	PagesUpdated int `json:"pagesUpdated"`
	PagesSkipped int `json:"pagesSkipped"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckpointService persists crawl position snapshots.
type CheckpointService interface {
	// SaveCheckpoint overwrites the stored snapshot.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	// LoadCheckpoint retrieves the stored snapshot.
	// Returns ENOTFOUND if no checkpoint exists.
	LoadCheckpoint(ctx context.Context) (*Checkpoint, error)

	// ClearCheckpoint removes the stored snapshot so the next run
	// starts with fresh discovery.
	ClearCheckpoint(ctx context.Context) error
}
