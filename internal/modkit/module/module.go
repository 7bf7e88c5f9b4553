// Package module is the contract every modkit module satisfies, plus the helpers
// the composition root uses to reach across module boundaries
package module

import (
	phttp "lodgement/internal/platform/net/http"
)

// Module mounts its routes and exposes a ports bundle for other modules
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}
