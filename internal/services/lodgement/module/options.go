package module

import (
	"time"

	"lodgement/internal/platform/config"
	"lodgement/internal/services/lodgement/service"
)

// Options controls sessions, routing and the filing backend
type Options struct {
	FilingURL     string
	FilingToken   string
	FilingTimeout time.Duration
	AppOrigin     string
	RoutesFile    string
	SessionTTL    time.Duration
	Audit         bool
	MaxUploadMB   int
	MaxFiles      int
	RequireBearer bool
}

// FromConfig reads with LODGEMENT_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("LODGEMENT_")
	return Options{
		FilingURL:     c.MayString("FILING_URL", ""),
		FilingToken:   c.MayString("FILING_TOKEN", ""),
		FilingTimeout: c.MayDuration("FILING_TIMEOUT", 60*time.Second),
		AppOrigin:     c.MayString("APP_ORIGIN", ""),
		RoutesFile:    c.MayString("ROUTES_FILE", ""),
		SessionTTL:    c.MayDuration("SESSION_TTL", service.DefaultSessionTTL),
		Audit:         c.MayBool("AUDIT", true),
		MaxUploadMB:   c.MayInt("MAX_UPLOAD_MB", 25),
		MaxFiles:      c.MayInt("MAX_FILES", 20),
		RequireBearer: c.MayBool("REQUIRE_BEARER", false),
	}
}
