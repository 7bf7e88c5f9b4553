// Package channel is the in-process same-origin broadcast used for direct handoffs
package channel

import (
	"net/url"
	"strings"
	"sync"

	"lodgement/internal/platform/logger"
	"lodgement/internal/services/transfer/domain"
)

// subscriberBuffer is how many undelivered messages a slow listener may hold before drops
const subscriberBuffer = 8

type subscriber struct {
	origin string
	ch     chan domain.Message
}

// Hub fans messages out to listeners registered for the sender's origin.
// Delivery is best effort; a full listener buffer drops the message
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[uint64]*subscriber
	log  *logger.Logger
}

var _ domain.Channel = (*Hub)(nil)

// NewHub returns an empty hub
func NewHub() *Hub {
	return &Hub{subs: map[uint64]*subscriber{}, log: logger.Named("transfer.channel")}
}

// Send delivers msg to every current listener of msg.Origin
func (h *Hub) Send(msg domain.Message) {
	origin := NormalizeOrigin(msg.Origin)
	if origin == "" {
		h.log.Debug().Str("origin", msg.Origin).Msg("dropping message without origin")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for id, s := range h.subs {
		if s.origin != origin {
			continue
		}
		select {
		case s.ch <- msg:
			delivered++
		default:
			h.log.Warn().Uint64("subscriber", id).Msg("listener buffer full, message dropped")
		}
	}
	if delivered == 0 {
		h.log.Debug().Str("origin", origin).Str("type", msg.Type).Msg("no listener for origin")
	}
}

// Subscribe registers fn for messages from origin. fn runs on a goroutine owned by the
// subscription and only sees handoff messages. The returned func is idempotent
func (h *Hub) Subscribe(origin string, fn func(domain.Message)) func() {
	s := &subscriber{origin: NormalizeOrigin(origin), ch: make(chan domain.Message, subscriberBuffer)}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = s
	h.mu.Unlock()

	go func() {
		for msg := range s.ch {
			if msg.Type != domain.MessageType {
				continue
			}
			fn(msg)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Listeners reports the number of active subscriptions
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// NormalizeOrigin reduces an origin or URL to lowercase scheme://host[:port].
// Default ports are dropped. Values that do not parse as absolute URLs are lowercased as is
func NormalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(raw)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host
}
