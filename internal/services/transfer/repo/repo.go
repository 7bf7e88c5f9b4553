// Package repo provides the durable transfer payload repository
package repo

import (
	"context"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/modkit/repokit"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/store"
)

// Repo is the durable persistence surface for transfer payloads
type Repo interface {
	Upsert(ctx context.Context, key string, p filecodec.Payload) error
	Get(ctx context.Context, key string) (filecodec.Payload, bool, error)
	Delete(ctx context.Context, key string) error
	DeleteCapturedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Schema creates the payload table and the sweep index when missing
var Schema = []string{`
	CREATE TABLE IF NOT EXISTS transfer_payloads (
		key            TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		media_type     TEXT NOT NULL,
		data           TEXT NOT NULL,
		captured_at_ms BIGINT NOT NULL,
		stored_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`, `
	CREATE INDEX IF NOT EXISTS transfer_payloads_captured_idx
		ON transfer_payloads (captured_at_ms)
`}

type (
	// PG is a Postgres implementation of the transfer repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Migrate applies Schema in one transaction
func Migrate(ctx context.Context, tx repokit.TxRunner) error {
	err := repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
		for _, stmt := range Schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	return perr.WrapIf(err, perr.CodeDB, "transfer schema")
}

// Upsert writes or replaces the payload stored under key
func (r *queries) Upsert(ctx context.Context, key string, p filecodec.Payload) error {
	const sql = `
		INSERT INTO transfer_payloads (key, name, media_type, data, captured_at_ms, stored_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key) DO UPDATE
		SET name           = EXCLUDED.name,
		    media_type     = EXCLUDED.media_type,
		    data           = EXCLUDED.data,
		    captured_at_ms = EXCLUDED.captured_at_ms,
		    stored_at      = EXCLUDED.stored_at
	`
	_, err := store.Exec(ctx, r.q, sql, key, p.Name, p.Type, p.Data, p.Timestamp)
	return perr.FromPostgresWithField(err, "transfer upsert")
}

// Get reads the payload under key; a missing row is ok=false
func (r *queries) Get(ctx context.Context, key string) (filecodec.Payload, bool, error) {
	const sql = `
		SELECT name, media_type, data, captured_at_ms
		FROM transfer_payloads
		WHERE key = $1
	`
	p, err := store.One(ctx, r.q, scanPayload, sql, key)
	if err != nil {
		if perr.IsCode(err, perr.CodeNotFound) {
			return filecodec.Payload{}, false, nil
		}
		return filecodec.Payload{}, false, perr.FromPostgres(err, "transfer get")
	}
	return p, true, nil
}

// Delete removes key; deleting a missing key is not an error
func (r *queries) Delete(ctx context.Context, key string) error {
	_, err := store.Exec(ctx, r.q, `DELETE FROM transfer_payloads WHERE key = $1`, key)
	return perr.FromPostgres(err, "transfer delete")
}

// DeleteCapturedBefore removes payloads captured at or before cutoff and reports how many went
func (r *queries) DeleteCapturedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := store.Exec(ctx, r.q, `DELETE FROM transfer_payloads WHERE captured_at_ms <= $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, perr.FromPostgres(err, "transfer sweep")
	}
	return tag.RowsAffected(), nil
}

func scanPayload(row store.Row) (filecodec.Payload, error) {
	var p filecodec.Payload
	err := row.Scan(&p.Name, &p.Type, &p.Data, &p.Timestamp)
	return p, err
}
