// Package modkit assembles API modules from shared dependencies and build options
package modkit

import (
	"lodgement/internal/modkit/module"
	"lodgement/internal/modkit/repokit"
	"lodgement/internal/platform/config"
	"lodgement/internal/platform/logger"
	"lodgement/internal/platform/store"
)

// Module is the contract the composition root mounts
type Module = module.Module

// Deps are the process wide dependencies handed to every module constructor.
// PG and CH are nil when the backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
