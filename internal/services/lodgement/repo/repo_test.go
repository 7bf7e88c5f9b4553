package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/store"
	"lodgement/internal/services/lodgement/domain"
)

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		case *uint16:
			*p = row[i].(uint16)
		default:
			return errors.New("unexpected dest")
		}
	}
	return nil
}

func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

type fakeCH struct {
	table    string
	inserted [][]any
	execs    []string
	query    string
	args     []any
	rows     *fakeRows
	err      error
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	f.table = table
	f.inserted = data.([][]any)
	return f.err
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return f.err
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.query, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCH) Close() error { return nil }

var at = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestRecord_InsertsOneRow(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{}
	err := NewCH(ch).Record(context.Background(), domain.Event{
		ID: "e-1", SessionID: "s-1", At: at, Kind: domain.KindContract, Outcome: domain.OutcomeSucceeded,
		Label: "Acme NMI: 4102345678", Type: "Origin C&I Electricity", Counter: "Origin Energy (C&I Electricity)",
		FileCount: 1, Message: "Agreement lodged",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ch.table != Table || len(ch.inserted) != 1 {
		t.Fatalf("insert = %s %v", ch.table, ch.inserted)
	}
	row := ch.inserted[0]
	if len(row) != 10 || row[0] != "e-1" || row[3] != "contract" || row[4] != "succeeded" || row[8] != uint16(1) {
		t.Fatalf("row = %v", row)
	}
}

func TestRecord_ErrorIsDB(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{err: errors.New("conn refused")}
	if err := NewCH(ch).Record(context.Background(), domain.Event{}); !perr.IsCode(err, perr.CodeDB) {
		t.Fatalf("err = %v", err)
	}
}

func TestMigrate_ExecsSchema(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{}
	if err := NewCH(ch).Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ch.execs) != 1 || !strings.Contains(ch.execs[0], "CREATE TABLE IF NOT EXISTS lodgement_events") {
		t.Fatalf("execs = %v", ch.execs)
	}
}

func TestBySession_ScansRows(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{rows: &fakeRows{data: [][]any{
		{"e-2", "s-1", at.Add(time.Minute), "contract", "failed", "Acme", "Default", "Lodgement Desk", uint16(1), "mailer down"},
		{"e-1", "s-1", at, "contract", "unauthorized", "Acme", "Default", "Lodgement Desk", uint16(1), "Token expired"},
	}}}
	got, err := NewCH(ch).BySession(context.Background(), "s-1", 0)
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(got) != 2 || got[0].ID != "e-2" || got[1].Outcome != domain.OutcomeUnauthorized || got[0].FileCount != 1 {
		t.Fatalf("events = %+v", got)
	}
	if ch.args[0] != "s-1" || ch.args[1] != 20 {
		t.Fatalf("args = %v", ch.args)
	}
}

func TestBySession_RowsError(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{rows: &fakeRows{err: errors.New("stream reset")}}
	if _, err := NewCH(ch).BySession(context.Background(), "s-1", 5); !perr.IsCode(err, perr.CodeDB) {
		t.Fatalf("err = %v", err)
	}
}
