// Package repo keeps the lodgement audit trail in ClickHouse
package repo

import (
	"context"
	"time"

	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/store"
	"lodgement/internal/services/lodgement/domain"
)

// Table is the audit table name
const Table = "lodgement_events"

// Schema creates the audit table when missing
const Schema = `
	CREATE TABLE IF NOT EXISTS lodgement_events (
		id          String,
		session_id  String,
		at          DateTime64(3, 'UTC'),
		kind        LowCardinality(String),
		outcome     LowCardinality(String),
		label       String,
		type        String,
		counter     String,
		file_count  UInt16,
		message     String
	)
	ENGINE = MergeTree
	ORDER BY (session_id, at)
	TTL toDateTime(at) + INTERVAL 400 DAY
`

// Events records and reads submission outcomes
type Events interface {
	domain.Recorder
	BySession(ctx context.Context, sessionID string, limit int) ([]domain.Event, error)
}

// CH is the ClickHouse implementation of Events
type CH struct {
	ch store.Clickhouse
}

var _ Events = (*CH)(nil)

// NewCH binds the repo to a ClickHouse seam
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("lodgement repo requires clickhouse")
	}
	return &CH{ch: ch}
}

// Migrate applies Schema
func (r *CH) Migrate(ctx context.Context) error {
	return perr.WrapIf(r.ch.Exec(ctx, Schema), perr.CodeDB, "lodgement events schema")
}

// Record appends one event
func (r *CH) Record(ctx context.Context, e domain.Event) error {
	row := []any{
		e.ID, e.SessionID, e.At.UTC(), string(e.Kind), string(e.Outcome),
		e.Label, e.Type, e.Counter, uint16(e.FileCount), e.Message,
	}
	return perr.WrapIf(r.ch.Insert(ctx, Table, [][]any{row}), perr.CodeDB, "lodgement event insert")
}

// BySession returns the newest events for a session, newest first
func (r *CH) BySession(ctx context.Context, sessionID string, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const sql = `
		SELECT id, session_id, at, kind, outcome, label, type, counter, file_count, message
		FROM lodgement_events
		WHERE session_id = ?
		ORDER BY at DESC
		LIMIT ?
	`
	rows, err := r.ch.Query(ctx, sql, sessionID, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.CodeDB, "lodgement events query")
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			e             domain.Event
			at            time.Time
			kind, outcome string
			files         uint16
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &at, &kind, &outcome, &e.Label, &e.Type, &e.Counter, &files, &e.Message); err != nil {
			return nil, perr.Wrap(err, perr.CodeDB, "lodgement events scan")
		}
		e.At = at.UTC()
		e.Kind = domain.AgreementKind(kind)
		e.Outcome = domain.Outcome(outcome)
		e.FileCount = int(files)
		out = append(out, e)
	}
	return out, perr.WrapIf(rows.Err(), perr.CodeDB, "lodgement events rows")
}
