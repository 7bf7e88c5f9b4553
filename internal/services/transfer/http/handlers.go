// Package http provides http transport for file handoffs
package http

import (
	stdhttp "net/http"
	"net/url"
	"strings"

	"lodgement/internal/modkit/httpkit"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/net/http/bind"
	"lodgement/internal/services/transfer/domain"
	svc "lodgement/internal/services/transfer/service"

	"github.com/go-chi/chi/v5"
)

// form fields the handoff owns; everything else is a navigation field
const (
	fieldFile = "file"
	fieldKey  = "key"
)

var reserved = map[string]bool{
	fieldFile:           true,
	fieldKey:            true,
	domain.ParamPending: true,
	domain.ParamKey:     true,
}

// Options configures the transport
type Options struct {
	// AppOrigin is used when a request carries no Origin header
	AppOrigin string

	// Upload limits for the published file
	Multipart bind.MultipartOptions
}

// Register mounts transfer endpoints on the given router
func Register(r httpkit.Router, s svc.Service, o Options) {
	h := &handlers{svc: s, opts: o}
	httpkit.Post(r, "/", h.publish)
	httpkit.Delete(r, "/{key}", h.clear)
}

type handlers struct {
	svc  svc.Service
	opts Options
}

func origin(r *stdhttp.Request, fallback string) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return o
	}
	return fallback
}

// swagger:route POST /transfers Transfers publish
// @Summary Publish a file for the lodgement page
// @Description Stores the file in the session and durable stores, broadcasts it to listeners of the same origin and returns the navigation target
// @Tags transfers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param key formData string false "Transfer key"
// @Success 201 {object} domain.PublishOutput "created"
// @Failure 422 {object} httpkit.Envelope "invalid"
// @Failure 503 {object} httpkit.Envelope "both stores failed"
// @Router /transfers [post]
func (h *handlers) publish(r *stdhttp.Request) (any, error) {
	fields, uploads, err := bind.ParseMultipart(r, h.opts.Multipart)
	if err != nil {
		return nil, err
	}
	var up *bind.Upload
	for i := range uploads {
		if uploads[i].Field == fieldFile {
			up = &uploads[i]
			break
		}
	}
	if up == nil {
		return nil, perr.WithField(perr.InvalidArgf("a file part is required"), fieldFile)
	}

	nav := url.Values{}
	for k, vv := range fields {
		if !reserved[k] {
			nav[k] = vv
		}
	}
	out, err := h.svc.Publish(r.Context(), domain.PublishInput{
		Origin:    origin(r, h.opts.AppOrigin),
		Key:       fields.Get(fieldKey),
		Name:      up.Name,
		MediaType: up.MediaType,
		Content:   up.Content,
		Nav:       nav,
	})
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// swagger:route DELETE /transfers/{key} Transfers clear
// @Summary Clear a pending transfer from both stores
// @Tags transfers
// @Param key path string true "Transfer key"
// @Success 204 "cleared"
// @Router /transfers/{key} [delete]
func (h *handlers) clear(r *stdhttp.Request) (any, error) {
	if err := h.svc.Clear(r.Context(), chi.URLParam(r, "key")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
