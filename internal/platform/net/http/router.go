package http

import "net/http"

// Handler is a plain handler func. httpkit layers the return-style handlers on top
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount their routes on. AdaptChi backs it with chi, and Group
// or Route hand children the same interface
type Router interface {
	Get(pattern string, h Handler)
	Post(pattern string, h Handler)
	Put(pattern string, h Handler)
	Patch(pattern string, h Handler)
	Delete(pattern string, h Handler)
	Head(pattern string, h Handler)
	Options(pattern string, h Handler)

	// Handle mounts a full http.Handler, e.g. the swagger UI under a wildcard
	Handle(pattern string, h http.Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(prefix string, fn func(Router))

	// Mux is what the server serves; children return their own subtree
	Mux() http.Handler
}
