// Package module mounts the health, readiness and build info endpoints
package module

import (
	"time"

	modkit "lodgement/internal/modkit"
	"lodgement/internal/modkit/httpkit"
	str "lodgement/internal/platform/strings"
	metahttp "lodgement/internal/services/api/meta/http"
)

// ServiceName is reported by /meta/health and /meta/service
const ServiceName = "lodgement-api"

// Catalog lists the modules mounted next to meta
type Catalog interface {
	Modules() []metahttp.ModuleInfo
}

// Ports is what the composition root may inject into meta
type Ports struct {
	Catalog Catalog
}

// Module serves /meta. It exports no ports of its own
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New builds the meta module. Readiness probes whichever of PG and CH deps carries
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	hd := metahttp.Deps{
		ServiceName: ServiceName,
		StartedAt:   time.Now(),
		Backends:    []metahttp.Backend{{Name: "pg", Seam: deps.PG}, {Name: "ch", Seam: deps.CH}},
	}
	if p, ok := b.Ports.(Ports); ok && p.Catalog != nil {
		hd.Modules = p.Catalog.Modules
	}
	return &Module{built: b, deps: hd}
}

// MountRoutes mounts the meta endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(g httpkit.Router) { metahttp.Register(g, m.deps) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the normalized mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports returns nil
func (m *Module) Ports() any { return nil }
