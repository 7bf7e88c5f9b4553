// Package http provides http transport for lodgement sessions and routing lookups
package http

import (
	stdhttp "net/http"
	"strings"

	"lodgement/internal/modkit/httpkit"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/net/http/bind"
	"lodgement/internal/platform/net/middleware"
	"lodgement/internal/services/lodgement/domain"
	svc "lodgement/internal/services/lodgement/service"

	"github.com/go-chi/chi/v5"
)

// Options configures the transport
type Options struct {
	// AppOrigin is used when a request carries no Origin header
	AppOrigin string

	// Upload limits for manual file selection
	Multipart bind.MultipartOptions

	// Auth guards the session routes when set; the caller's bearer is forwarded to filing
	Auth middleware.AuthPort
}

// Register mounts lodgement endpoints on the given router
func Register(r httpkit.Router, s svc.Service, o Options) {
	h := &handlers{svc: s, opts: o}

	sessions := func(r httpkit.Router) {
		httpkit.Post(r, "/sessions", h.open)
		httpkit.Get(r, "/sessions/{id}", h.get)
		httpkit.Post(r, "/sessions/{id}/files", h.files)
		httpkit.PutJSON[domain.FieldsUpdate](r, "/sessions/{id}/fields", h.fields)
		httpkit.Get(r, "/sessions/{id}/preview", h.preview)
		httpkit.Post(r, "/sessions/{id}/submit", h.submit)
		httpkit.Post(r, "/sessions/{id}/reauthenticated", h.reauthenticated)
		httpkit.Get(r, "/sessions/{id}/events", h.events)
	}
	if o.Auth != nil {
		httpkit.Protected(r, o.Auth, sessions)
	} else {
		sessions(r)
	}

	// routing lookups
	httpkit.Get(r, "/routing", h.tables)
	httpkit.Get(r, "/routing/identifier", h.identifier)
	httpkit.Get(r, "/routing/{table}", h.routes)
	httpkit.Get(r, "/routing/{table}/resolve", h.resolve)
}

type handlers struct {
	svc  svc.Service
	opts Options
}

// Origin returns the caller origin from the Origin header, else fallback
func Origin(r *stdhttp.Request, fallback string) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return o
	}
	return fallback
}

// swagger:route POST /lodgement/sessions Lodgement openSession
// @Summary Open a lodgement session from navigation parameters
// @Description With pending_transfer=1 the handoff is received before the session is returned
// @Tags lodgement
// @Produce json
// @Param agreement_type query string false "contract, contract_multi or eoi"
// @Param business_name query string false "Business name"
// @Param category query string false "Utility or service category"
// @Param type query string false "Contract or service type"
// @Param nmi query string false "NMI"
// @Param mirn query string false "MIRN"
// @Param pending_transfer query string false "1 when a handoff is waiting"
// @Param transfer_key query string false "Handoff key"
// @Success 201 {object} domain.SessionView "created"
// @Router /lodgement/sessions [post]
func (h *handlers) open(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	kind, err := domain.ParseAgreementKind(q.Get("agreement_type"))
	if err != nil {
		return nil, err
	}
	v, err := h.svc.Open(r.Context(), domain.OpenInput{
		Origin: Origin(r, h.opts.AppOrigin),
		Kind:   kind,
		Nav:    domain.ParseNav(q),
	})
	if err != nil {
		return nil, err
	}
	return httpkit.Created(v), nil
}

// swagger:route GET /lodgement/sessions/{id} Lodgement getSession
// @Summary Session state
// @Tags lodgement
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SessionView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /lodgement/sessions/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /lodgement/sessions/{id}/files Lodgement selectFiles
// @Summary Replace the selected files
// @Tags lodgement
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SessionView "ok"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Router /lodgement/sessions/{id}/files [post]
func (h *handlers) files(r *stdhttp.Request) (any, error) {
	_, uploads, err := bind.ParseMultipart(r, h.opts.Multipart)
	if err != nil {
		return nil, err
	}
	files := make([]domain.FileInput, 0, len(uploads))
	for _, u := range uploads {
		files = append(files, domain.FileInput{Name: u.Name, MediaType: u.MediaType, Content: u.Content})
	}
	return h.svc.SelectFiles(r.Context(), chi.URLParam(r, "id"), files)
}

// swagger:route PUT /lodgement/sessions/{id}/fields Lodgement updateFields
// @Summary Edit classification fields
// @Tags lodgement
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.FieldsUpdate true "Fields"
// @Success 200 {object} domain.SessionView "ok"
// @Router /lodgement/sessions/{id}/fields [put]
func (h *handlers) fields(r *stdhttp.Request, in domain.FieldsUpdate) (any, error) {
	return h.svc.UpdateFields(r.Context(), chi.URLParam(r, "id"), in)
}

// swagger:route GET /lodgement/sessions/{id}/preview Lodgement preview
// @Summary Routing preview for the current fields
// @Tags lodgement
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.Preview "ok"
// @Router /lodgement/sessions/{id}/preview [get]
func (h *handlers) preview(r *stdhttp.Request) (any, error) {
	return h.svc.Preview(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /lodgement/sessions/{id}/submit Lodgement submit
// @Summary Submit the session to the filing backend
// @Tags lodgement
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SubmitOutput "ok"
// @Failure 401 {object} httpkit.Envelope "reauthentication required"
// @Failure 409 {object} httpkit.Envelope "already submitting"
// @Router /lodgement/sessions/{id}/submit [post]
func (h *handlers) submit(r *stdhttp.Request) (any, error) {
	return h.svc.Submit(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /lodgement/sessions/{id}/reauthenticated Lodgement reauthenticated
// @Summary Release a session held after a rejected credential
// @Tags lodgement
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SessionView "ok"
// @Router /lodgement/sessions/{id}/reauthenticated [post]
func (h *handlers) reauthenticated(r *stdhttp.Request) (any, error) {
	return h.svc.Reauthenticated(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /lodgement/sessions/{id}/events Lodgement events
// @Summary Audit trail for a session
// @Tags lodgement
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {array} domain.Event "ok"
// @Router /lodgement/sessions/{id}/events [get]
func (h *handlers) events(r *stdhttp.Request) (any, error) {
	return h.svc.Events(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /lodgement/routing Lodgement routeTables
// @Summary Loaded routing tables
// @Tags lodgement
// @Produce json
// @Success 200 {array} string "ok"
// @Router /lodgement/routing [get]
func (h *handlers) tables(r *stdhttp.Request) (any, error) {
	return h.svc.RouteTables(r.Context()), nil
}

// swagger:route GET /lodgement/routing/{table} Lodgement listRoutes
// @Summary Every entry of a routing table
// @Tags lodgement
// @Produce json
// @Param table path string true "contract or eoi"
// @Success 200 {array} routing.Entry "ok"
// @Failure 404 {object} httpkit.Envelope "unknown table"
// @Router /lodgement/routing/{table} [get]
func (h *handlers) routes(r *stdhttp.Request) (any, error) {
	return h.svc.ListRoutes(r.Context(), chi.URLParam(r, "table"))
}

// swagger:route GET /lodgement/routing/{table}/resolve Lodgement resolveRoute
// @Summary Resolve a contract or service type to its counterparty
// @Tags lodgement
// @Produce json
// @Param table path string true "contract or eoi"
// @Param type query string false "Contract or service type"
// @Success 200 {object} routing.Entry "ok"
// @Failure 404 {object} httpkit.Envelope "unknown table"
// @Router /lodgement/routing/{table}/resolve [get]
func (h *handlers) resolve(r *stdhttp.Request) (any, error) {
	return h.svc.ResolveRoute(r.Context(), chi.URLParam(r, "table"), r.URL.Query().Get("type"))
}

// swagger:route GET /lodgement/routing/identifier Lodgement identifier
// @Summary Identifier implied by a category
// @Tags lodgement
// @Produce json
// @Param category query string true "Utility or service category"
// @Success 200 {object} service.IdentifierView "ok"
// @Router /lodgement/routing/identifier [get]
func (h *handlers) identifier(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	if !q.Has("category") {
		return nil, perr.WithField(perr.InvalidArgf("category is required"), "category")
	}
	return h.svc.ResolveIdentifier(r.Context(), q.Get("category"))
}
