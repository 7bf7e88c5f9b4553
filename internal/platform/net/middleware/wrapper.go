// Package middleware holds the HTTP middleware the API stacks. chi types stay inside
package middleware

import (
	"net/http"
	"time"

	"lodgement/internal/platform/logger"
	pstrings "lodgement/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID accepts an inbound X-Request-ID or mints one, then scopes the request
// logger to it
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		scoped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			next.ServeHTTP(w, r.WithContext(logger.WithRequest(ctx, chimw.GetReqID(ctx), "")))
		})
		return chimw.RequestID(scoped)
	}
}

func RealIP() func(http.Handler) http.Handler       { return chimw.RealIP }
func NoCache() func(http.Handler) http.Handler      { return chimw.NoCache }
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Timeout bounds the request context. Handlers must honour ctx for it to bite
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Heartbeat answers GET and HEAD on path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// Compress negotiates gzip and deflate at level
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

// Throttle lets limit requests run and parks as many again for up to five seconds.
// Anything past that gets 429
func Throttle(limit int) func(http.Handler) http.Handler {
	return chimw.ThrottleBacklog(limit, limit, 5*time.Second)
}

// CORSOptions is the part of go-chi/cors the API configures. Empty lists take the
// API defaults
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
