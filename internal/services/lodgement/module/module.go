// Package module wires lodgement sessions into the API using modkit
package module

import (
	"context"

	"lodgement/internal/core/routing"
	modkit "lodgement/internal/modkit"
	"lodgement/internal/modkit/httpkit"
	"lodgement/internal/platform/logger"
	"lodgement/internal/platform/net/http/bind"
	str "lodgement/internal/platform/strings"
	"lodgement/internal/services/lodgement/client"
	"lodgement/internal/services/lodgement/domain"
	lhttp "lodgement/internal/services/lodgement/http"
	"lodgement/internal/services/lodgement/repo"
	"lodgement/internal/services/lodgement/service"
)

// Module implements the lodgement module
type Module struct {
	deps   modkit.Deps
	built  modkit.Built
	ports  any
	routes func(httpkit.Router)

	events *repo.CH
	svc    *service.Svc
}

// New constructs the lodgement module. The transfer receiver must be injected with
// modkit.WithPorts(Ports{...}); audit events go to ClickHouse when it is configured
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), nil, opts...)
}

// NewWith constructs the module with explicit options. A nil filer means the http client
func NewWith(deps modkit.Deps, o Options, filer domain.Filer, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("lodgement"), modkit.WithPrefix("/lodgement")}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Receiver == nil {
		panic("lodgement module requires the transfer Receiver port")
	}

	log := logger.Named("lodgement")
	book, err := routing.LoadFile(o.RoutesFile)
	if err != nil {
		log.Panic().Err(err).Str("file", o.RoutesFile).Msg("routing tables failed to load")
	}

	if filer == nil {
		filer = client.New(client.Options{
			URL:     o.FilingURL,
			Timeout: o.FilingTimeout,
			Tokens:  client.ForwardedToken{Fallback: client.StaticToken(o.FilingToken)},
		})
	}

	m := &Module{deps: deps, built: b}

	var rec domain.Recorder
	if deps.CH != nil && o.Audit {
		m.events = repo.NewCH(deps.CH)
		rec = m.events
	}

	m.svc = service.New(service.Deps{
		Routes:   book,
		Receiver: injected.Receiver,
		Filer:    filer,
		Recorder: rec,
	}, service.Config{SessionTTL: o.SessionTTL})
	m.ports = adaptLodgementPort{svc: m.svc}

	hopts := lhttp.Options{
		AppOrigin: o.AppOrigin,
		Multipart: bind.MultipartOptions{MaxBytes: int64(o.MaxUploadMB) << 20, MaxFiles: o.MaxFiles},
	}
	if o.RequireBearer {
		hopts.Auth = httpkit.NewPortFunc(subject)
	}

	m.routes = func(r httpkit.Router) { lhttp.Register(r, m.svc, hopts) }
	return m
}

// Start creates the audit table when ClickHouse is configured and starts session expiry
func (m *Module) Start(ctx context.Context) error {
	if m.events != nil {
		if err := m.events.Migrate(ctx); err != nil {
			return err
		}
	}
	m.svc.Start()
	return nil
}

// Run holds session expiry open until ctx is done
func (m *Module) Run(ctx context.Context) error {
	<-ctx.Done()
	m.svc.Stop()
	return ctx.Err()
}

// MountRoutes mounts the session, routing and audit endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r, m.routes) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the normalized mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }
