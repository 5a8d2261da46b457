package mock

import (
	"context"

	"github.com/wikivault/wikivault"
)

var _ wikivault.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of wikivault.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx)
}
