package modkit

import (
	"net/http"
	"slices"

	"lodgement/internal/modkit/httpkit"
	str "lodgement/internal/platform/strings"
)

// Option adjusts how a module is built
type Option func(*Built)

// WithName overrides the module's default name
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix overrides the module's default mount prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends mw to the module group, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects another module's ports. The importing module owns the type
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// WithSubrouter swaps the group the module registers on
func WithSubrouter(fn func(httpkit.Router) httpkit.Router) Option {
	return func(b *Built) { b.Subrouter = fn }
}

// WithRegister adds routes after the module's own
func WithRegister(fn func(httpkit.Router)) Option { return func(b *Built) { b.Register = fn } }

// Built is the resolved option set. Subrouter and Register are never nil
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = slices.Clone(b.Mw)
	if b.Subrouter == nil {
		b.Subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}

// Mount opens a group at Prefix with Mw, then registers routes followed by any
// WithRegister extras on the Subrouter view of that group
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	httpkit.MountUnder(r, str.MustPrefix(b.Prefix), b.Mw, func(g httpkit.Router) {
		g = b.Subrouter(g)
		routes(g)
		b.Register(g)
	})
}
