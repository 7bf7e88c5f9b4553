package store

import (
	"context"
	"fmt"
	"time"

	"lodgement/internal/core/retry"
	"lodgement/internal/platform/logger"
	chx "lodgement/internal/platform/store/ch"
	"lodgement/internal/platform/store/pg"
)

// DefaultConnectRetries is how many pings Open makes before giving up on Postgres
const DefaultConnectRetries = 6

const defaultPingTimeout = 5 * time.Second

// pingPolicy is swapped by tests for a zero backoff
var pingPolicy = func(attempts int) retry.Policy {
	return retry.Policy{Attempts: attempts, Backoff: retry.Exponential(150*time.Millisecond, 2*time.Second)}
}

// openPG waits for Postgres to answer before handing out the adapter. Readiness
// pings bypass the tracer
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.ConnectRetries, 0)
	if attempts == 0 {
		attempts = DefaultConnectRetries
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	var last error
	_, up, err := retry.Do(ctx, pingPolicy(attempts), func(ctx context.Context, attempt int) (struct{}, bool, error) {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		last = p.Pool.Ping(pctx)
		if last != nil {
			log.Warn().Err(last).Int("attempt", attempt+1).Int("of", attempts).Msg("postgres not ready")
		}
		return struct{}{}, last == nil, nil
	})
	if err == nil && !up {
		err = fmt.Errorf("postgres unreachable after %d pings: %w", attempts, last)
	}
	if err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.AppName, Tag: cfg.CH.Tag})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
