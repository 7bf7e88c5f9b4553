// Package store opens the optional Postgres and ClickHouse backends behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"lodgement/internal/platform/logger"
)

// Row scans a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward only result set. Close is safe to call twice
type Rows interface {
	Row
	Next() bool
	Err() error
	Close()
	Columns() []string
}

// CommandTag describes the effect of a write
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the SQL surface repos bind to; pools and open transactions both satisfy it
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner adds transactions. fn's querier is only valid until fn returns
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam behind lodgement audit events.
// Insert takes [][]any, one slice per row in column order
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by backends that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Store holds the enabled backends. A disabled backend is nil
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

// Option adjusts the Store before any backend is dialed
type Option func(*Store) error

// WithLogger replaces the disabled default logger
func WithLogger(l logger.Logger) Option {
	return func(s *Store) error { s.Log = l; return nil }
}

// Open dials each backend cfg enables, Postgres first. On failure nothing stays open
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := new(Store)
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		pgs, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = pgs
	}
	if cfg.CH.Enabled {
		chs, err := openCH(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = chs
	}
	return s, nil
}

func (s *Store) backends() []struct {
	name string
	b    any
} {
	return []struct {
		name string
		b    any
	}{{"pg", s.PG}, {"ch", s.CH}}
}

// Guard pings every backend that supports it, in pg then ch order. Failures are
// joined, each prefixed with the backend name
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: not opened")
	}
	var errs []error
	for _, nb := range s.backends() {
		p, ok := nb.b.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nb.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every opened backend
func (s *Store) Close(context.Context) error {
	var errs []error
	for _, nb := range s.backends() {
		if c, ok := nb.b.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
