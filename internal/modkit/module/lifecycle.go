package module

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Starter is implemented by modules that prepare storage before routes serve traffic
type Starter interface {
	Start(ctx context.Context) error
}

// Runner is implemented by modules with background loops that end with ctx
type Runner interface {
	Run(ctx context.Context) error
}

// StartAll calls Start on every module that has one, in order, stopping at the first error
func StartAll(ctx context.Context, mods ...Module) error {
	for _, m := range mods {
		s, ok := m.(Starter)
		if !ok {
			continue
		}
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", m.Name(), err)
		}
	}
	return nil
}

// RunAll runs every Runner concurrently until ctx is done or one of them fails.
// A Runner that returns after cancellation has stopped cleanly
func RunAll(ctx context.Context, mods ...Module) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range mods {
		r, ok := m.(Runner)
		if !ok {
			continue
		}
		name := m.Name()
		g.Go(func() error {
			if err := r.Run(gctx); err != nil && gctx.Err() == nil {
				return fmt.Errorf("run %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
