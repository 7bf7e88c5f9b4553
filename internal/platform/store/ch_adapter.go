package store

import (
	"context"
	"fmt"

	"lodgement/internal/platform/store/ch"
)

// chSeam narrows *ch.CH to Clickhouse
type chSeam struct{ c *ch.CH }

var (
	_ Clickhouse = (*chSeam)(nil)
	_ Pinger     = (*chSeam)(nil)
)

func newCHAdapter(c *ch.CH) Clickhouse { return &chSeam{c: c} }

func (s *chSeam) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert into %s wants [][]any, got %T", table, data)
	}
	return s.c.Insert(ctx, table, rows)
}

func (s *chSeam) Exec(ctx context.Context, sql string, args ...any) error {
	return s.c.Exec(ctx, sql, args...)
}

func (s *chSeam) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := s.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

// Ping tolerates a nil receiver so Guard can probe a half built Store
func (s *chSeam) Ping(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("store: clickhouse not opened")
	}
	return s.c.Ping(ctx)
}

func (s *chSeam) Close() error { return s.c.Close() }

// chRows drops the driver's Close error to match Rows
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
