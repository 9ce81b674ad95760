// Package api provides the HTTP API for the application
package api

import (
	"time"

	"pulse/internal/platform/config"
	"pulse/internal/platform/logger"
	phttp "pulse/internal/platform/net/http"
	"pulse/internal/platform/store"

	"pulse/internal/modkit"
	"pulse/internal/modkit/httpkit"
	"pulse/internal/modkit/module"
	"pulse/internal/modkit/swaggerkit"

	metamod "pulse/internal/services/api/meta/module"
	timelinemod "pulse/internal/services/timeline/module"
	vitalsmod "pulse/internal/services/vitals/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	RequestTimeout time.Duration
}

// Deps builds the shared module deps from the store, nil backends stay nil
func Deps(cfg config.Conf, st *store.Store) modkit.Deps {
	deps := modkit.Deps{Cfg: cfg}
	if st == nil {
		return deps
	}
	deps.PG = st.PG
	deps.CH = st.CH
	deps.RDS = st.RDS
	return deps
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := Deps(opt.Config, opt.Store)
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		timelinemod.New(deps),
	}

	// vitals needs a subject and an oracle, without them the route is simply absent
	if vo := vitalsmod.FromConfig(deps.Cfg); vo.Enabled() {
		mods = append(mods, vitalsmod.NewWithOptions(deps, vo))
	} else {
		logger.Named("api").Info().Msg("vitals disabled: CORE_VITALS_SUBJECT or SERVICE_ORACLE_BASE_URL unset")
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackOptions{Timeout: opt.RequestTimeout}), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
