package store

import (
	"context"
	"errors"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/retry"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"
	"lodgement/internal/services/transfer/domain"
)

// Read retry defaults
const (
	DefaultReadAttempts = 3
	DefaultReadDelay    = 200 * time.Millisecond
)

// DefaultReadPolicy is three attempts spaced 200ms apart on the real clock
func DefaultReadPolicy() retry.Policy {
	return retry.Fixed(DefaultReadAttempts, DefaultReadDelay)
}

// Sweeper is implemented by backends that can drop old payloads in bulk
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pair writes to and reads from the session and durable backends together
type Pair struct {
	Session domain.Store
	Durable domain.Store
	log     *logger.Logger
}

// NewPair builds a Pair; both backends are required
func NewPair(session, durable domain.Store) *Pair {
	if session == nil || durable == nil {
		panic("transfer.store: nil backend")
	}
	return &Pair{Session: session, Durable: durable, log: logger.Named("transfer.store")}
}

// Result reports which backends accepted a write
type Result struct {
	Session bool
	Durable bool
}

// WriteBoth stores p under key in the session backend then the durable one.
// A failing backend is logged and skipped; only a double failure is returned
func (p *Pair) WriteBoth(ctx context.Context, key string, payload filecodec.Payload) (Result, error) {
	var res Result
	serr := p.Session.Write(ctx, key, payload)
	if serr != nil {
		p.log.Warn().Err(serr).Str("key", key).Msg("session write failed")
	} else {
		res.Session = true
	}
	derr := p.Durable.Write(ctx, key, payload)
	if derr != nil {
		p.log.Warn().Err(derr).Str("key", key).Msg("durable write failed")
	} else {
		res.Durable = true
	}
	if serr != nil && derr != nil {
		return res, perr.Wrap(errors.Join(serr, derr), perr.CodeUnavailable, "transfer write failed on both backends")
	}
	return res, nil
}

// Hit is a payload found by ReadWithRetry and the backend that held it
type Hit struct {
	Payload filecodec.Payload
	Via     domain.Source
}

// ReadWithRetry looks in session then durable on each attempt, waiting per policy between
// attempts. Backend errors count as a miss. Exhaustion is ok=false with a nil error
func (p *Pair) ReadWithRetry(ctx context.Context, key string, policy retry.Policy) (Hit, bool, error) {
	return p.ReadUntil(ctx, key, policy, nil)
}

// ReadUntil is ReadWithRetry with a filter: a hit accept rejects counts as a miss and
// polling goes on while the budget lasts. A nil accept takes the first hit
func (p *Pair) ReadUntil(ctx context.Context, key string, policy retry.Policy, accept func(Hit) bool) (Hit, bool, error) {
	backends := []struct {
		s    domain.Store
		via  domain.Source
		name string
	}{
		{p.Session, domain.SourceSession, "session"},
		{p.Durable, domain.SourceDurable, "durable"},
	}
	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) (Hit, bool, error) {
		for _, b := range backends {
			v, ok := p.readOne(ctx, b.s, key, attempt, b.name)
			if !ok {
				continue
			}
			h := Hit{Payload: v, Via: b.via}
			if accept == nil || accept(h) {
				return h, true, nil
			}
		}
		return Hit{}, false, nil
	})
}

func (p *Pair) readOne(ctx context.Context, s domain.Store, key string, attempt int, name string) (filecodec.Payload, bool) {
	v, ok, err := s.Read(ctx, key)
	if err != nil {
		// transient contention is expected under load, anything else deserves attention
		ev := p.log.Warn()
		if perr.Retryable(err) {
			ev = p.log.Debug()
		}
		ev.Err(err).Str("key", key).Str("backend", name).Int("attempt", attempt).Msg("read failed")
		return filecodec.Payload{}, false
	}
	return v, ok
}

// ClearBoth removes key from both backends
func (p *Pair) ClearBoth(ctx context.Context, key string) error {
	return errors.Join(p.Session.Clear(ctx, key), p.Durable.Clear(ctx, key))
}

// Sweep drops durable payloads captured at or before cutoff when the backend supports it
func (p *Pair) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	sw, ok := p.Durable.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sw.Sweep(ctx, cutoff)
}
