package checkout

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// saga collects the undo actions of the commit steps that already
// succeeded. rollback runs them newest first.
type saga struct {
	logger *zap.Logger
	steps  []compensation
}

func (s *saga) add(name string, fn func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, fn: fn})
}

// rollback runs every compensation even if the attempt's context is already
// canceled, and returns the combined failures.
func (s *saga) rollback(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var errs error
	for i := len(s.steps) - 1; i >= 0; i-- {
		c := s.steps[i]
		if err := c.fn(ctx); err != nil {
			s.logger.Error("compensation failed", zap.String("step", c.name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		s.logger.Info("compensation applied", zap.String("step", c.name))
	}
	s.steps = nil
	return errs
}
