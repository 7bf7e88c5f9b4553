// Package http serves the /meta probes and service info
package http

import (
	"context"
	"net/http"
	"time"

	"lodgement/internal/core/version"
	"lodgement/internal/modkit/httpkit"
)

const probeTimeout = 2 * time.Second

// Readiness check states
const (
	StatusOK       = "ok"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
	StatusUnknown  = "unknown"
	StatusDegraded = "degraded"
)

// Pinger is satisfied by the store adapters
type Pinger interface {
	Ping(context.Context) error
}

// Backend is a dependency probed by /meta/ready. A nil Seam is an unconfigured backend
type Backend struct {
	Name string
	Seam any
}

// Deps feed the meta handlers. Now defaults to time.Now
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Backends    []Backend
	Modules     func() []ModuleInfo
	Now         func() time.Time
}

type handlers struct{ Deps }

// Register mounts the meta routes on r
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/modules", h.modules)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"lodgement-api"`
	Started string `json:"started"  example:"2026-10-01T09:00:00Z"`
	Now     string `json:"now"      example:"2026-10-01T09:05:00Z"`
}

// ReadyCheck is one backend's probe result
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok" enums:"ok,fail,skipped,unknown"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok" enums:"ok,degraded,fail"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T09:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"lodgement-api"`
	Started string `json:"started" example:"2026-10-01T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ModuleInfo names a mounted module, its route prefix and the port set it exports
type ModuleInfo struct {
	Name   string `json:"name"            example:"transfer"`
	Prefix string `json:"prefix"          example:"/transfers"`
	Ports  string `json:"ports,omitempty" example:"module.Ports"`
}

// ModulesResponse lists the mounted modules
type ModulesResponse struct {
	Modules []ModuleInfo `json:"modules"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(h.Now())}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness with a probe per backend
// @Description Unconfigured backends are skipped and degrade the result; the transfer module falls back to memory without them
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	out := ReadyResponse{Status: StatusOK, Checks: make([]ReadyCheck, 0, len(h.Backends)), Now: stamp(h.Now())}
	for _, b := range h.Backends {
		c := probe(ctx, b)
		out.Checks = append(out.Checks, c)
		switch {
		case c.Status == StatusFail:
			out.Status = StatusFail
		case c.Status != StatusOK && out.Status == StatusOK:
			out.Status = StatusDegraded
		}
	}
	return out, nil
}

func probe(ctx context.Context, b Backend) ReadyCheck {
	c := ReadyCheck{Name: b.Name}
	p, ok := b.Seam.(Pinger)
	switch {
	case b.Seam == nil:
		c.Status = StatusSkipped
	case !ok:
		c.Status = StatusUnknown
	default:
		c.Status = StatusOK
		if err := p.Ping(ctx); err != nil {
			c.Status, c.Error = StatusFail, err.Error()
		}
	}
	return c
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build stamps
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) { return version.Info(), nil }

// swagger:route GET /meta/service Meta metaService
// @Summary Service name and uptime in seconds
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(h.Now().Sub(h.StartedAt) / time.Second),
	}, nil
}

// swagger:route GET /meta/modules Meta metaModules
// @Summary Mounted modules with their prefixes and port sets
// @Tags Meta
// @Produce json
// @Success 200 {object} ModulesResponse "ok"
// @Router /meta/modules [get]
func (h handlers) modules(*http.Request) (any, error) {
	out := ModulesResponse{Modules: []ModuleInfo{}}
	if h.Modules != nil {
		out.Modules = append(out.Modules, h.Modules()...)
	}
	return out, nil
}
