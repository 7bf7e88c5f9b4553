// Package swaggerkit serves the API reference: the swagger UI and the doc.json it reads
package swaggerkit

import (
	"net/http"

	phttp "lodgement/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	docsRoot = "/api/docs"
	docJSON  = docsRoot + "/doc.json"
)

// Mount serves the UI under /api/docs/ and the lifted document at /api/docs/doc.json.
// Nothing is mounted when enabled is false
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	ui := httpSwagger.Handler(httpSwagger.InstanceName(InstanceName), httpSwagger.URL(docJSON))

	r.Get(docsRoot, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, docsRoot+"/", http.StatusPermanentRedirect)
	})
	r.Get(docJSON, serveDocJSON())
	r.Handle(docsRoot+"/*", ui)
}
