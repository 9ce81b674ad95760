// @title         Pulse API
// @version       0.1.0
// @description   Activity timeline, grouping and vitals endpoints

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"pulse/internal/modkit/repokit"
	"pulse/internal/platform/config"
	"pulse/internal/platform/logger"
	phttp "pulse/internal/platform/net/http"
	"pulse/internal/platform/net/middleware"
	"pulse/internal/platform/store"

	"pulse/internal/services/api"
	timelinemod "pulse/internal/services/timeline/module"

	"github.com/go-chi/chi/v5"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres, clickhouse and redis are each optional, enabled by their url
	st, err := store.Open(ctx, store.FromConfig(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	guardCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	repokit.MustGuard(guardCtx, st)
	if err := timelinemod.EnsureSchema(guardCtx, api.Deps(root, st), timelinemod.FromConfig(root)); err != nil {
		l.Panic().Err(err).Msg("timeline schema")
	}
	cancel()

	// http server (reads CORE_API_PORT), /health answers outside the api stack
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) { m.Use(middleware.Heartbeat("/health")) })

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			RequestTimeout: apiCfg.MayDuration("REQUEST_TIMEOUT", 90*time.Second),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
