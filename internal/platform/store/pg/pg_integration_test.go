//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"lodgement/internal/platform/testkit/pgtest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	p, err := Open(ctx, Config{URL: dsn, MaxConns: 2}, nil, func(pc *pgxpool.Config) {
		pc.ConnConfig.RuntimeParams["application_name"] = "lodgement-it"
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(p.Close)

	// temp tables live on one session
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer conn.Release()

	var app string
	if err := conn.QueryRow(ctx, `SELECT current_setting('application_name')`).Scan(&app); err != nil || app != "lodgement-it" {
		t.Fatalf("application_name=%q err=%v", app, err)
	}

	if _, err := conn.Exec(ctx, `CREATE TEMP TABLE routes (agreement_type TEXT PRIMARY KEY, emails TEXT[] NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO routes VALUES ($1, $2)`, "contract", []string{"contracts@example.com"})
	b.Queue(`INSERT INTO routes VALUES ($1, $2)`, "eoi", []string{"eoi@example.com", "ops@example.com"})
	if err := conn.SendBatch(ctx, b).Close(); err != nil {
		t.Fatalf("batch: %v", err)
	}

	type route struct {
		Type   string
		Emails []string
	}
	rows, err := conn.Query(ctx, `SELECT agreement_type, emails FROM routes ORDER BY agreement_type`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByPos[route])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 2 || got[0].Type != "contract" || len(got[1].Emails) != 2 {
		t.Fatalf("rows=%+v", got)
	}
}
