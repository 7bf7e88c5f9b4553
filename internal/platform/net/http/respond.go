// Package http writes every reply as a pnet.Envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "lodgement/internal/platform/net"
)

// Envelope is the body every endpoint writes
type Envelope = pnet.Envelope

// Response is what return style handlers hand back. Status zero means 200, and a
// Body holding an error is written as that error's failure envelope
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

func OK(data any) Response      { return Response{Status: stdhttp.StatusOK, Body: data} }
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }
func NoContent() Response       { return Response{Status: stdhttp.StatusNoContent} }
func Error(err error) Response  { return Response{Body: err} }

// Handle adapts a Response returning func to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) { h(r).writeTo(w, r) }
}

func (resp Response) writeTo(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	hdr := w.Header()
	for k, vv := range resp.Header {
		hdr[k] = append(hdr[k], vv...)
	}
	if resp.Status == stdhttp.StatusNoContent {
		w.WriteHeader(resp.Status)
		return
	}

	rid := pnet.RequestID(r.Context())
	status, env := resp.Status, Envelope{}
	if err, isErr := resp.Body.(error); isErr && err != nil {
		status, env = pnet.Error(err, rid)
	} else {
		if status == 0 {
			status = stdhttp.StatusOK
		}
		env = pnet.Reply(status, resp.Body, rid)
	}
	JSON(w, status, env)
}

// JSON encodes v with status and a JSON content type
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
