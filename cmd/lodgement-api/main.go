// @title         Lodgement API
// @version       0.1.0
// @description   Agreement file handoff, routing and lodgement sessions

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lodgement/internal/core/version"
	"lodgement/internal/modkit/httpkit"
	"lodgement/internal/modkit/repokit"
	"lodgement/internal/platform/config"
	"lodgement/internal/platform/logger"
	phttp "lodgement/internal/platform/net/http"
	"lodgement/internal/platform/store"
	"lodgement/internal/services/api"

	"golang.org/x/sync/errgroup"
)

func main() {
	opts := logger.FromEnv()
	opts.Version = version.Info().Version
	logger.Init(opts)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.New()
	apiCfg := cfg.Prefix("CORE_API_")

	st, err := store.Open(ctx, storeConfig(cfg), store.WithLogger(*log))
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	srv := phttp.NewServer(apiCfg)
	rt := api.Mount(srv.Router(), api.Options{
		Config:         cfg,
		Store:          st,
		Logger:         log,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Stack: httpkit.StackOptions{
			CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			Timeout:     apiCfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
			SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
			MaxInFlight: apiCfg.MayInt("MAX_IN_FLIGHT", 0),
		},
	})
	if err := rt.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start modules")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("shutting down")
	}
}

// storeConfig reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*. Both backends are
// optional: without Postgres transfers stay in memory, without ClickHouse audit is skipped
func storeConfig(cfg config.Conf) store.Config {
	pgc, chc := cfg.Prefix("SERVICE_PGSQL_"), cfg.Prefix("SERVICE_CLICKHOUSE_")
	pgURL, chURL := pgc.MayString("DBURL", ""), chc.MayString("DBURL", "")
	return store.Config{
		AppName: "lodgement-api",
		PG: store.PGConfig{
			Enabled:        pgURL != "",
			URL:            pgURL,
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 500),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", store.DefaultConnectRetries),
		},
		CH: store.CHConfig{Enabled: chURL != "", URL: chURL, Tag: "api"},
	}
}
