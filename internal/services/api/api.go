// Package api provides the HTTP API for the application
package api

import (
	"context"
	"fmt"

	"lodgement/internal/platform/config"
	"lodgement/internal/platform/logger"
	phttp "lodgement/internal/platform/net/http"
	"lodgement/internal/platform/net/middleware"
	"lodgement/internal/platform/store"

	"lodgement/internal/modkit"
	"lodgement/internal/modkit/httpkit"
	"lodgement/internal/modkit/module"
	"lodgement/internal/modkit/swaggerkit"

	metahttp "lodgement/internal/services/api/meta/http"
	metamod "lodgement/internal/services/api/meta/module"
	lodgementmod "lodgement/internal/services/lodgement/module"
	tdomain "lodgement/internal/services/transfer/domain"
	transfermod "lodgement/internal/services/transfer/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	Stack          httpkit.StackOptions
}

// Runtime holds the mounted modules so the caller can drive their lifecycle
type Runtime struct {
	mods []module.Module
}

// Start prepares storage for every module, in mount order
func (rt *Runtime) Start(ctx context.Context) error { return module.StartAll(ctx, rt.mods...) }

// Run drives background work until ctx is done or a module fails
func (rt *Runtime) Run(ctx context.Context) error { return module.RunAll(ctx, rt.mods...) }

// Modules lists the mounted modules with their prefixes and registered ports
func (rt *Runtime) Modules() []metahttp.ModuleInfo {
	out := make([]metahttp.ModuleInfo, 0, len(rt.mods))
	for _, m := range rt.mods {
		info := metahttp.ModuleInfo{Name: m.Name()}
		if p, ok := m.(interface{ Prefix() string }); ok {
			info.Prefix = p.Prefix()
		}
		if ports, ok := module.PortsAs[any](m.Name()); ok && ports != nil {
			info.Ports = fmt.Sprintf("%T", ports)
		}
		out = append(out, info)
	}
	return out
}

// Mount mounts the API service onto the given router and returns its runtime
func Mount(r phttp.Router, opt Options) *Runtime {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	rt := &Runtime{}

	// the transfer module owns the receiver port the lodgement module consumes
	var transferOpts []modkit.Option
	if n := opt.Config.Prefix("TRANSFER_").MayInt("MAX_IN_FLIGHT", 0); n > 0 {
		// caps concurrent captures and pickups
		transferOpts = append(transferOpts, modkit.WithMiddlewares(middleware.Throttle(n)))
	}
	transfers := transfermod.New(deps, transferOpts...)
	recv := module.MustPortsOf[tdomain.ReceiverPort](transfers)

	lodgements := lodgementmod.New(
		deps,
		modkit.WithPorts(lodgementmod.Ports{Receiver: recv}),
	)

	rt.mods = []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Catalog: rt})),
		transfers,
		lodgements,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range rt.mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return rt
}
