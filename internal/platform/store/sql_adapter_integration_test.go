//go:build integration_pg

package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"lodgement/internal/platform/testkit/pgtest"

	"github.com/rs/zerolog"
)

func TestStore_Integration_TxCommitAndRollback(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := Open(ctx, Config{
		AppName: "lodgement-it",
		PG:      PGConfig{Enabled: true, URL: dsn, MaxConns: 2, LogSQL: true},
	}, WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := st.Guard(ctx); err != nil {
		t.Fatalf("guard: %v", err)
	}
	if _, err := st.PG.Exec(ctx, `CREATE TABLE handoff_keys (key TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := st.PG.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO handoff_keys VALUES ($1)`, "kept")
		return err
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	rolledBack := errors.New("rollback")
	if err := st.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO handoff_keys VALUES ($1)`, "dropped"); err != nil {
			return err
		}
		return rolledBack
	}); !errors.Is(err, rolledBack) {
		t.Fatalf("want rollback error, got %v", err)
	}

	rs, err := st.PG.Query(ctx, `SELECT key FROM handoff_keys ORDER BY key`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rs.Close()
	var keys []string
	for rs.Next() {
		var k string
		if err := rs.Scan(&k); err != nil {
			t.Fatalf("scan: %v", err)
		}
		keys = append(keys, k)
	}
	if len(keys) != 1 || keys[0] != "kept" {
		t.Fatalf("want only committed key, got %v", keys)
	}
}
