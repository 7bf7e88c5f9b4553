// Package module wires file handoffs into the API using modkit
package module

import (
	"context"
	"strings"

	modkit "lodgement/internal/modkit"
	"lodgement/internal/modkit/httpkit"
	"lodgement/internal/modkit/repokit"
	"lodgement/internal/platform/logger"
	"lodgement/internal/platform/net/http/bind"
	str "lodgement/internal/platform/strings"
	"lodgement/internal/services/transfer/channel"
	"lodgement/internal/services/transfer/domain"
	thttp "lodgement/internal/services/transfer/http"
	"lodgement/internal/services/transfer/repo"
	"lodgement/internal/services/transfer/service"
	"lodgement/internal/services/transfer/store"

	"k8s.io/utils/clock"
)

// Module implements the transfer module
type Module struct {
	deps   modkit.Deps
	built  modkit.Built
	opts   Options
	ports  Ports
	routes func(httpkit.Router)

	session *store.Cache
	durable domain.Store
	usePG   bool
	svc     *service.Svc
}

// New constructs the transfer module. With Postgres configured the durable store is the
// transfer_payloads table unless TRANSFER_DURABLE=memory; otherwise an in process cache
// stands in for it
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), clock.RealClock{}, opts...)
}

// NewWith constructs the module with explicit options and clock
func NewWith(deps modkit.Deps, o Options, clk clock.WithDelayedExecution, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("transfer"), modkit.WithPrefix("/transfers")}, opts...)...)

	log := logger.Named("transfer")
	if strings.EqualFold(o.Durable, DurablePostgres) && deps.PG == nil {
		log.Panic().Msg("TRANSFER_DURABLE=postgres but postgres is not configured")
	}
	usePG := deps.PG != nil && !strings.EqualFold(o.Durable, DurableMemory)

	session := store.NewSession(o.SessionTTL)
	var durable domain.Store
	if usePG {
		durable = store.NewDurable(repokit.MustBind(repo.NewPG(), deps.PG))
	} else {
		log.Warn().Str("durable", o.Durable).Msg("durable transfers kept in memory")
		durable = store.NewMemory()
	}

	svc := service.New(store.NewPair(session, durable), channel.NewHub(), clk, service.Config{
		Window:       o.Window,
		ClearDelay:   o.ClearDelay,
		ReadAttempts: o.ReadAttempts,
		ReadDelay:    o.ReadDelay,
		TargetPath:   o.TargetPath,
	})

	hopts := thttp.Options{
		AppOrigin: o.AppOrigin,
		Multipart: bind.MultipartOptions{MaxBytes: o.MaxUpload, MaxFiles: 1},
	}
	return &Module{
		deps:    deps,
		built:   b,
		opts:    o,
		ports:   Ports{Transfers: svc, Receiver: adaptReceiver{svc: svc}},
		routes:  func(r httpkit.Router) { thttp.Register(r, svc, hopts) },
		session: session,
		durable: durable,
		usePG:   usePG,
		svc:     svc,
	}
}

// Start creates the durable table when Postgres backs it and starts session expiry
func (m *Module) Start(ctx context.Context) error {
	if m.usePG {
		if err := repo.Migrate(ctx, m.deps.PG); err != nil {
			return err
		}
	}
	m.session.Start()
	if c, ok := m.durable.(*store.Cache); ok {
		c.Start()
	}
	return nil
}

// Run sweeps stale durable payloads until ctx is done, then stops the caches
func (m *Module) Run(ctx context.Context) error {
	defer m.stop()
	return m.svc.RunSweeper(ctx, m.opts.SweepEvery)
}

func (m *Module) stop() {
	m.session.Stop()
	if c, ok := m.durable.(*store.Cache); ok {
		c.Stop()
	}
}

// MountRoutes mounts the handoff endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r, m.routes) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the normalized mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }
