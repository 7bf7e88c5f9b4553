package store

import (
	"context"

	perr "lodgement/internal/platform/errors"
)

// Exec runs a write and returns the raw CommandTag
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (CommandTag, error) {
	return q.Exec(ctx, sql, args...)
}

// One maps exactly one row into T with scan.
// No rows yields perr.ErrNotFound, more than one is a conflict
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(rowCursor{rows})
	if err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, perr.Conflictf("expected one row, got more")
	}
	return item, rows.Err()
}

// rowCursor scans the current position of a Rows
type rowCursor struct{ rows Rows }

func (r rowCursor) Scan(dest ...any) error { return r.rows.Scan(dest...) }
