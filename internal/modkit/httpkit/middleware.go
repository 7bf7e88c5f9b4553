package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"lodgement/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack. Zero values keep the defaults
type StackOptions struct {
	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
	MaxInFlight int
}

// CommonStack returns a baseline per module middleware slice
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.Recover,
		middleware.NoCache(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   o.CORSOrigins,
			AllowCredentials: len(o.CORSOrigins) > 0,
		}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
	if o.MaxInFlight > 0 {
		stack = append(stack, middleware.Throttle(o.MaxInFlight))
	}
	return stack
}

// Auth guards routes with p
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler { return middleware.Auth(p) }
