package mock

import (
	"context"

	"github.com/wikivault/wikivault"
)

var _ wikivault.CheckpointService = (*CheckpointService)(nil)

// CheckpointService is a mock implementation of wikivault.CheckpointService.
type CheckpointService struct {
	SaveCheckpointFn  func(ctx context.Context, cp *wikivault.Checkpoint) error
	LoadCheckpointFn  func(ctx context.Context) (*wikivault.Checkpoint, error)
	ClearCheckpointFn func(ctx context.Context) error
}

func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *wikivault.Checkpoint) error {
	return s.SaveCheckpointFn(ctx, cp)
}

func (s *CheckpointService) LoadCheckpoint(ctx context.Context) (*wikivault.Checkpoint, error) {
	return s.LoadCheckpointFn(ctx)
}

func (s *CheckpointService) ClearCheckpoint(ctx context.Context) error {
	return s.ClearCheckpointFn(ctx)
}
