package pg

import (
	"context"
	"strings"

	"lodgement/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements through root. It pins its own level to debug so turning on
// PG_LOG_SQL is enough to see queries whatever LOG_LEVEL says
func Tracer(root logger.Logger) QueryTracer {
	return sqlLog{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type sqlLog struct{ log logger.Logger }

func (s sqlLog) OnQuery(_ context.Context, ev QueryEvent) {
	e := s.log.Info()
	if ev.Slow {
		e = s.log.Warn()
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", squash(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// squash collapses each whitespace run to a single space so multi line SQL stays on
// one log line. Leading and trailing runs are kept as one space
func squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !gap {
				b.WriteByte(' ')
			}
			gap = true
		default:
			b.WriteRune(r)
			gap = false
		}
	}
	return b.String()
}
