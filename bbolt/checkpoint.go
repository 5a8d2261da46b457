// Package bbolt provides a BoltDB-backed implementation of
// wikivault.CheckpointService. A single small key-value file suits
// checkpoints well: snapshots are overwritten atomically and survive
// process crashes without a server dependency.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wikivault/wikivault"
	bolt "go.etcd.io/bbolt"
)

const checkpointBucket = "checkpoints"

// Compile-time interface verification.
var _ wikivault.CheckpointService = (*CheckpointService)(nil)

// CheckpointService stores crawl checkpoints as JSON snapshots in a bbolt
// bucket, keyed by crawler ID so several crawlers can share one file.
type CheckpointService struct {
	db        *bolt.DB
	crawlerID string
}

// Open opens (creating if needed) the checkpoint database at path and
// returns a service scoped to the given crawler ID. Close must be called
// when the service is no longer needed.
func Open(path, crawlerID string) (*CheckpointService, error) {
	if crawlerID == "" {
		return nil, wikivault.Errorf(wikivault.EINVALID, "crawler id required")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(checkpointBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init checkpoint bucket: %w", err)
	}

	return &CheckpointService{db: db, crawlerID: crawlerID}, nil
}

// Close closes the underlying database.
func (s *CheckpointService) Close() error {
	return s.db.Close()
}

// SaveCheckpoint overwrites the stored snapshot for this crawler.
func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *wikivault.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(checkpointBucket)).Put([]byte(s.crawlerID), data)
	})
}

// LoadCheckpoint retrieves this crawler's snapshot. Returns ENOTFOUND when
// no checkpoint has been saved yet.
func (s *CheckpointService) LoadCheckpoint(ctx context.Context) (*wikivault.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cp *wikivault.Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(checkpointBucket)).Get([]byte(s.crawlerID))
		if data == nil {
			return nil
		}
		cp = &wikivault.Checkpoint{}
		return json.Unmarshal(data, cp)
	})
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if cp == nil {
		return nil, wikivault.Errorf(wikivault.ENOTFOUND, "no checkpoint for crawler %q", s.crawlerID)
	}
	return cp, nil
}

// ClearCheckpoint removes this crawler's snapshot so the next run starts
// with fresh discovery.
func (s *CheckpointService) ClearCheckpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(checkpointBucket)).Delete([]byte(s.crawlerID))
	})
}
