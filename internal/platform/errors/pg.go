package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgCodes maps the SQLSTATEs repos care about. Anything else is CodeDB
var pgCodes = map[string]ErrorCode{
	"23505": CodeDuplicateKey,    // unique_violation
	"23503": CodeInvalidArgument, // foreign_key_violation
	"22001": CodeInvalidArgument, // string_data_right_truncation
	"22P02": CodeInvalidArgument, // invalid_text_representation
	"23502": CodeValidation,      // not_null_violation
	"23514": CodeValidation,      // check_violation
	"25006": CodeUnavailable,     // read_only_sql_transaction
	"57P03": CodeUnavailable,     // cannot_connect_now
}

// pgRetry is the SQLSTATEs worth another attempt
var pgRetry = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P03": true,
}

// pgRetryText catches transient failures pgx reports without a SQLSTATE
var pgRetryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}

func pgError(err error) *pgconn.PgError {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe
	}
	return nil
}

// FromPostgres wraps a database error as msg with its mapped code. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := CodeDB
	if pe := pgError(err); pe != nil {
		if c, ok := pgCodes[pe.Code]; ok {
			code = c
		}
	}
	return Wrap(err, code, msg)
}

// FromPostgresWithField is FromPostgres that also names the offending field, taken
// from the column or else the last segment of the constraint name. Key constraints
// name no field
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pe := pgError(err)
	if pe == nil {
		return out
	}
	if col := strings.TrimSpace(pe.ColumnName); col != "" {
		return WithField(out, col)
	}
	cons := strings.TrimSpace(pe.ConstraintName)
	i := strings.LastIndexByte(cons, '_')
	if i < 0 || i == len(cons)-1 {
		return out
	}
	switch f := cons[i+1:]; f {
	case "key", "pkey":
		return out
	default:
		return WithField(out, f)
	}
}

// pgTransient reports contention or a restarting server. A cancelled or expired
// context never is
func pgTransient(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe := pgError(err); pe != nil {
		return pgRetry[pe.Code]
	}
	msg := strings.ToLower(Root(err).Error())
	for _, t := range pgRetryText {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
