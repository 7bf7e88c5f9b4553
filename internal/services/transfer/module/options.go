package module

import (
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/platform/config"
	"lodgement/internal/services/transfer/service"
	"lodgement/internal/services/transfer/store"
)

// Durable backend choices for TRANSFER_DURABLE. auto uses Postgres when configured
const (
	DurableAuto     = "auto"
	DurablePostgres = "postgres"
	DurableMemory   = "memory"
)

// Options controls the handoff timings and stores
type Options struct {
	Durable      string
	SessionTTL   time.Duration
	SweepEvery   time.Duration
	Window       time.Duration
	ClearDelay   time.Duration
	ReadAttempts int
	ReadDelay    time.Duration
	TargetPath   string
	AppOrigin    string
	MaxUpload    int64
}

// FromConfig reads TRANSFER_* plus the shared LODGEMENT_APP_ORIGIN
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TRANSFER_")
	return Options{
		Durable:      c.MayEnum("DURABLE", DurableAuto, DurableAuto, DurablePostgres, DurableMemory),
		SessionTTL:   c.MayDuration("SESSION_TTL", store.DefaultSessionTTL),
		SweepEvery:   c.MayDuration("SWEEP_EVERY", service.DefaultSweepEvery),
		Window:       c.MayDuration("FRESH_WINDOW", filecodec.FreshWindow),
		ClearDelay:   c.MayDuration("CLEAR_DELAY", service.DefaultClearDelay),
		ReadAttempts: c.MayInt("READ_ATTEMPTS", store.DefaultReadAttempts),
		ReadDelay:    c.MayDuration("READ_DELAY", store.DefaultReadDelay),
		TargetPath:   c.MayString("TARGET_PATH", service.DefaultTargetPath),
		AppOrigin:    cfg.MayString("LODGEMENT_APP_ORIGIN", ""),
		MaxUpload:    int64(c.MayInt("MAX_UPLOAD_MB", 25)) << 20,
	}
}
