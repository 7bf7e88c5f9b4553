package middleware

import (
	"encoding/json"
	"net/http"

	pnet "lodgement/internal/platform/net"
)

// fail writes err as the JSON error envelope, tagged with the request id
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, env := pnet.Error(err, pnet.RequestID(r.Context()))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
