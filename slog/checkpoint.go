package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/wikivault/wikivault"
)

// Ensure LoggingCheckpointService implements wikivault.CheckpointService.
var _ wikivault.CheckpointService = (*LoggingCheckpointService)(nil)

// LoggingCheckpointService wraps a CheckpointService with debug logging.
type LoggingCheckpointService struct {
	next   wikivault.CheckpointService
	logger *slog.Logger
}

// NewLoggingCheckpointService creates a new LoggingCheckpointService.
func NewLoggingCheckpointService(next wikivault.CheckpointService, logger *slog.Logger) *LoggingCheckpointService {
	return &LoggingCheckpointService{next: next, logger: logger}
}

// SaveCheckpoint delegates to the wrapped service and logs the operation.
func (s *LoggingCheckpointService) SaveCheckpoint(ctx context.Context, cp *wikivault.Checkpoint) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save checkpoint",
			"category_index", cp.CategoryIndex,
			"article_index", cp.ArticleIndex,
			"pages_crawled", cp.PagesCrawled,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveCheckpoint(ctx, cp)
}

// LoadCheckpoint delegates to the wrapped service and logs the operation.
func (s *LoggingCheckpointService) LoadCheckpoint(ctx context.Context) (cp *wikivault.Checkpoint, err error) {
	defer func(begin time.Time) {
		s.logger.Info("load checkpoint",
			"found", err == nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.LoadCheckpoint(ctx)
}

// ClearCheckpoint delegates to the wrapped service and logs the operation.
func (s *LoggingCheckpointService) ClearCheckpoint(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("clear checkpoint",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ClearCheckpoint(ctx)
}
