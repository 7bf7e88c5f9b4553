package store

import (
	"context"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/services/transfer/domain"
	"lodgement/internal/services/transfer/repo"
)

// Durable adapts the Postgres repo to the Store contract
type Durable struct {
	r repo.Repo
}

var _ domain.Store = (*Durable)(nil)

// NewDurable wraps r
func NewDurable(r repo.Repo) *Durable {
	if r == nil {
		panic("transfer.store: nil repo")
	}
	return &Durable{r: r}
}

// Write upserts the payload under key
func (d *Durable) Write(ctx context.Context, key string, p filecodec.Payload) error {
	return d.r.Upsert(ctx, key, p)
}

// Read loads the payload under key
func (d *Durable) Read(ctx context.Context, key string) (filecodec.Payload, bool, error) {
	return d.r.Get(ctx, key)
}

// Clear deletes key
func (d *Durable) Clear(ctx context.Context, key string) error {
	return d.r.Delete(ctx, key)
}

// Sweep deletes rows captured at or before cutoff
func (d *Durable) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	return d.r.DeleteCapturedBefore(ctx, cutoff)
}
