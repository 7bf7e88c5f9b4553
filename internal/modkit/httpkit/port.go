package httpkit

import (
	"net/http"
	"strings"

	perrs "lodgement/internal/platform/errors"
)

// TokenFunc turns a bearer token into the caller's user id, which may be empty
type TokenFunc func(token string) (userID string, err error)

// Port is the bearer AuthPort. The scheme match ignores case and surrounding space
type Port struct {
	parse TokenFunc
}

// NewPortFunc wraps fn as a Port
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse reads Authorization and hands the token to the parser. Every failure is
// Unauthorized; parser errors are not echoed to the caller
func (p *Port) Parse(r *http.Request) (string, string, error) {
	tok, ok := bearer(r.Header.Get("Authorization"))
	if !ok {
		return "", "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	uid, err := p.parse(tok)
	if err != nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, tok, nil
}

func bearer(h string) (string, bool) {
	h = strings.TrimSpace(h)
	const scheme = "bearer"
	if len(h) < len(scheme) || !strings.EqualFold(h[:len(scheme)], scheme) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(scheme):])
	return tok, tok != ""
}
