// Package service implements the file handoff between the capture page and the lodgement page
package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/retry"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"
	"lodgement/internal/services/transfer/domain"
	"lodgement/internal/services/transfer/store"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

// Service defines the transfer service contract
type Service interface {
	domain.ServicePort
}

// Defaults for Config
const (
	DefaultClearDelay = 3 * time.Second
	DefaultTargetPath = "/lodgement"
)

// Config tunes the handoff timings
type Config struct {
	// Window is how old a payload may be and still be accepted
	Window time.Duration

	// ClearDelay is how long after a delivery both backends are cleared
	ClearDelay time.Duration

	// ReadAttempts and ReadDelay bound the store polling on the receiving side
	ReadAttempts int
	ReadDelay    time.Duration

	// TargetPath is the destination page the publisher navigates to
	TargetPath string
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = filecodec.FreshWindow
	}
	if c.ClearDelay <= 0 {
		c.ClearDelay = DefaultClearDelay
	}
	if c.ReadAttempts <= 0 {
		c.ReadAttempts = store.DefaultReadAttempts
	}
	if c.ReadDelay <= 0 {
		c.ReadDelay = store.DefaultReadDelay
	}
	if c.TargetPath == "" {
		c.TargetPath = DefaultTargetPath
	}
	return c
}

// Svc implements the transfer service
type Svc struct {
	pair  *store.Pair
	ch    domain.Channel
	clock clock.WithDelayedExecution
	cfg   Config
	log   *logger.Logger
}

// New constructs the service; a nil clock means the real clock
func New(pair *store.Pair, ch domain.Channel, clk clock.WithDelayedExecution, cfg Config) *Svc {
	if pair == nil {
		panic("transfer.Service requires a non nil store pair")
	}
	if ch == nil {
		panic("transfer.Service requires a non nil channel")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Svc{pair: pair, ch: ch, clock: clk, cfg: cfg.withDefaults(), log: logger.Named("transfer")}
}

// Config returns the effective configuration
func (s *Svc) Config() Config { return s.cfg }

func keyOr(k string) string {
	if k = strings.TrimSpace(k); k == "" {
		return domain.DefaultKey
	}
	return k
}

// Publish encodes the file, writes it to both backends and broadcasts it to the origin.
// The returned target carries the navigation fields plus pending_transfer=1
func (s *Svc) Publish(ctx context.Context, in domain.PublishInput) (domain.PublishOutput, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.PublishOutput{}, perr.WithField(perr.InvalidArgf("file name is required"), "file")
	}
	key := keyOr(in.Key)
	p := filecodec.EncodeBytes(in.Name, in.MediaType, in.Content, s.clock.Now())

	res, err := s.pair.WriteBoth(ctx, key, p)
	if err != nil {
		return domain.PublishOutput{}, err
	}
	s.ch.Send(domain.Message{Type: domain.MessageType, Origin: in.Origin, Key: key, FileData: p})

	logger.C(ctx).Debug().
		Str("key", key).
		Str("name", p.Name).
		Int("size", len(in.Content)).
		Bool("session_ok", res.Session).
		Bool("durable_ok", res.Durable).
		Msg("transfer published")

	return domain.PublishOutput{
		Key:        key,
		Name:       p.Name,
		MediaType:  p.Type,
		Size:       len(in.Content),
		CapturedAt: p.Timestamp,
		Target:     s.target(key, in.Nav),
		Session:    res.Session,
		Durable:    res.Durable,
	}, nil
}

func (s *Svc) target(key string, nav url.Values) string {
	q := url.Values{}
	for k, vv := range nav {
		for _, v := range vv {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	q.Set(domain.ParamPending, "1")
	if key != domain.DefaultKey {
		q.Set(domain.ParamKey, key)
	}
	return s.cfg.TargetPath + "?" + q.Encode()
}

// Receive waits for a pending transfer on the channel and the stores at the same time.
// The first fresh payload that decodes wins; later arrivals are ignored. Stale payloads
// are cleared on sight and count as a miss, so both paths keep going for the whole
// budget. A win schedules both backends to be cleared after ClearDelay.
// When the read budget runs out without a win, ok is false and the listener is dropped
func (s *Svc) Receive(ctx context.Context, in domain.ReceiveInput) (domain.Delivered, bool, error) {
	key := keyOr(in.Key)
	log := logger.C(ctx).With().Str("key", key).Logger()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once sync.Once
		out  domain.Delivered
		won  bool
	)
	accept := func(p filecodec.Payload, via domain.Source) bool {
		if !filecodec.Fresh(p, s.clock.Now(), s.cfg.Window) {
			log.Info().Str("via", string(via)).Time("captured_at", p.CapturedAt()).Msg("stale transfer discarded")
			if err := s.pair.ClearBoth(context.WithoutCancel(ctx), key); err != nil {
				log.Warn().Err(err).Msg("clearing stale transfer failed")
			}
			return false
		}
		f, err := filecodec.Decode(p)
		if err != nil {
			log.Warn().Err(err).Str("via", string(via)).Msg("transfer payload could not be decoded")
			return false
		}
		accepted := false
		once.Do(func() {
			out = domain.Delivered{File: f, Via: via}
			won, accepted = true, true
			cancel()
		})
		return accepted
	}

	msgs := make(chan domain.Message, 1)
	unsubscribe := s.ch.Subscribe(in.Origin, func(m domain.Message) {
		if m.Key != "" && m.Key != key {
			return
		}
		select {
		case msgs <- m:
		default:
		}
	})
	defer unsubscribe()

	storeDone := make(chan struct{})
	g, gctx := errgroup.WithContext(wctx)

	g.Go(func() error {
		defer close(storeDone)
		policy := retry.Policy{
			Attempts: s.cfg.ReadAttempts,
			Backoff:  retry.Constant(s.cfg.ReadDelay),
			Sleep:    retry.ClockSleeper(s.clock),
		}
		_, _, _ = s.pair.ReadUntil(gctx, key, policy, func(h store.Hit) bool {
			return accept(h.Payload, h.Via)
		})
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-storeDone:
				// a message queued while the store path finished still counts
				select {
				case m := <-msgs:
					accept(m.FileData, domain.SourceChannel)
				default:
				}
				return nil
			case m := <-msgs:
				if accept(m.FileData, domain.SourceChannel) {
					return nil
				}
			}
		}
	})

	_ = g.Wait()

	if won {
		s.scheduleClear(key)
		log.Info().Str("via", string(out.Via)).Str("name", out.File.Name).Msg("transfer delivered")
		return out, true, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Delivered{}, false, err
	}
	log.Debug().Msg("no pending transfer")
	return domain.Delivered{}, false, nil
}

func (s *Svc) scheduleClear(key string) {
	s.clock.AfterFunc(s.cfg.ClearDelay, func() {
		if err := s.pair.ClearBoth(context.Background(), key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("delayed clear failed")
		}
	})
}

// Clear removes the transfer under key from both backends now
func (s *Svc) Clear(ctx context.Context, key string) error {
	return s.pair.ClearBoth(ctx, keyOr(key))
}
