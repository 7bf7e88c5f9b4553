package store

import (
	"context"
	"errors"
	"time"

	"lodgement/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what *pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced is a RowQuerier that reports each statement to tracer. slowMs below
// zero never flags a statement as slow
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slowMs int
}

// observe starts the clock for one statement; the returned func reports it
func (t traced) observe(ctx context.Context, sql string, args []any) func(error) {
	if t.tracer == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		el := time.Since(start)
		t.tracer.OnQuery(ctx, pg.QueryEvent{
			SQL:       sql,
			Args:      args,
			ElapsedUS: el.Microseconds(),
			Err:       err,
			Slow:      t.slowMs >= 0 && el >= time.Duration(t.slowMs)*time.Millisecond,
		})
	}
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	done := t.observe(ctx, sql, args)
	ct, err := t.q.Exec(ctx, sql, args...)
	done(err)
	return ct, err
}

// Query reports once the result set is open; draining it is not timed
func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	done := t.observe(ctx, sql, args)
	rs, err := t.q.Query(ctx, sql, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return pgxRows{rs}, nil
}

// QueryRow defers the report to Scan, where pgx surfaces the error
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return pgxRow{row: t.q.QueryRow(ctx, sql, args...), done: t.observe(ctx, sql, args)}
}

type pgxRow struct {
	row  pgx.Row
	done func(error)
}

func (r pgxRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.done(err)
	return err
}

type pgxRows struct{ pgx.Rows }

func (r pgxRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}

// pgAdapter is the pool backed TxRunner repos receive
type pgAdapter struct {
	traced
	db *pg.PG
}

var (
	_ TxRunner = (*pgAdapter)(nil)
	_ Pinger   = (*pgAdapter)(nil)
)

func newPGAdapter(db *pg.PG) *pgAdapter {
	return &pgAdapter{traced: traced{q: db.Pool, tracer: db.Tracer, slowMs: db.SlowMs}, db: db}
}

// Tx commits when fn succeeds and rolls back otherwise
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	inner := a.traced
	inner.q = tx
	if err := fn(inner); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("store: postgres not opened")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error {
	a.db.Close()
	return nil
}
