// Package store holds the transfer payload backends and the pair that writes to both
package store

import (
	"context"
	"sync/atomic"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/services/transfer/domain"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultSessionTTL bounds how long a session payload survives without being cleared
const DefaultSessionTTL = 30 * time.Minute

// Cache is a ttlcache backed payload store. It serves as the session backend and,
// with NoTTL, as the durable stand-in when Postgres is disabled
type Cache struct {
	c       *ttlcache.Cache[string, filecodec.Payload]
	ttl     time.Duration
	running atomic.Bool
}

var _ domain.Store = (*Cache)(nil)

// NewSession returns a session backend whose entries expire after ttl
func NewSession(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return newCache(ttl)
}

// NewMemory returns a durable stand-in whose entries never expire
func NewMemory() *Cache { return newCache(ttlcache.NoTTL) }

func newCache(ttl time.Duration) *Cache {
	c := ttlcache.New[string, filecodec.Payload](
		ttlcache.WithTTL[string, filecodec.Payload](ttl),
		ttlcache.WithDisableTouchOnHit[string, filecodec.Payload](),
	)
	return &Cache{c: c, ttl: ttl}
}

// Start runs the expiry loop until Stop is called
func (s *Cache) Start() {
	if s.running.CompareAndSwap(false, true) {
		go s.c.Start()
	}
}

// Stop ends the expiry loop; it is a no-op when Start was never called
func (s *Cache) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.c.Stop()
	}
}

// Write replaces the payload under key
func (s *Cache) Write(_ context.Context, key string, p filecodec.Payload) error {
	s.c.Set(key, p, ttlcache.DefaultTTL)
	return nil
}

// Read returns the payload under key
func (s *Cache) Read(_ context.Context, key string) (filecodec.Payload, bool, error) {
	it := s.c.Get(key)
	if it == nil {
		return filecodec.Payload{}, false, nil
	}
	return it.Value(), true, nil
}

// Clear drops key
func (s *Cache) Clear(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Sweep drops entries captured at or before cutoff
func (s *Cache) Sweep(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	ms := cutoff.UnixMilli()
	for k, it := range s.c.Items() {
		if it.Value().Timestamp <= ms {
			s.c.Delete(k)
			n++
		}
	}
	return n, nil
}

// Len reports the live entry count
func (s *Cache) Len() int { return s.c.Len() }
