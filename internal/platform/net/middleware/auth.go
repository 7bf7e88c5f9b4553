package middleware

import (
	"net/http"

	"lodgement/internal/platform/logger"
	pnet "lodgement/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the user id and the raw credential to forward downstream
	Parse(r *http.Request) (userID string, credential string, err error)
}

// Auth rejects requests p cannot resolve with the JSON error envelope. On success the
// user id and credential ride on the context and the request logger gains user_id.
// A nil port lets everything through
func Auth(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, cred, err := p.Parse(r)
			if err != nil {
				logger.C(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("auth rejected")
				fail(w, r, err)
				return
			}
			ctx := pnet.WithCredential(pnet.WithUser(r.Context(), uid), cred)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
