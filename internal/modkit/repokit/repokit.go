// Package repokit is the glue between SQL repositories and the store they run on
package repokit

import (
	"context"
	"fmt"

	"lodgement/internal/platform/store"
)

type (
	// Queryer is the statement surface a bound repo runs against
	Queryer = store.RowQuerier
	// TxRunner is a Queryer that can also open transactions
	TxRunner = store.TxRunner
)

// Binder produces a repo of type T bound to a Queryer. The same binder can bind
// the pool or a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// MustBind binds q, panicking on a nil q so miswiring fails at startup
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind with nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn in one transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// MustGuard panics unless every configured backend behind g answers
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }) {
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("store guard: %w", err))
	}
}
