package service

import (
	"context"
	"time"

	"lodgement/internal/platform/logger"
)

// DefaultSweepEvery is the default period between durable sweeps
const DefaultSweepEvery = time.Minute

// SweepOnce drops durable payloads that are no longer fresh and reports how many went
func (s *Svc) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.cfg.Window)
	return s.pair.Sweep(ctx, cutoff)
}

// RunSweeper sweeps every period until ctx is done
func (s *Svc) RunSweeper(ctx context.Context, every time.Duration) error {
	log := logger.Named("transfer-sweeper")
	if every <= 0 {
		every = DefaultSweepEvery
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(every):
			n, err := s.SweepOnce(ctx)
			if err != nil {
				log.Error().Err(err).Msg("sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("expired transfers swept")
			}
		}
	}
}
