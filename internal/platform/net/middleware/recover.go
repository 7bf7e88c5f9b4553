package middleware

import (
	"net/http"
	"runtime/debug"

	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"
)

// Recover answers a panicking handler with a 500 envelope coded as a panic and logs
// the value with its stack. http.ErrAbortHandler is re-raised for net/http to handle
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("stack", string(debug.Stack())).
				Msg("handler panic")

			fail(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
