package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pulse/internal/modkit/module"
	"pulse/internal/platform/config"
	"pulse/internal/platform/logger"
	"pulse/internal/platform/store"

	"pulse/internal/services/api"
	tldomain "pulse/internal/services/timeline/domain"
	timelinemod "pulse/internal/services/timeline/module"
	vitalsmod "pulse/internal/services/vitals/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

type diagnoser interface {
	RunDiagnostics(ctx context.Context) bool
}

func main() {
	var (
		fLogin  = flag.String("login", "", "GitHub login to crawl (CORE_TIMELINE_GITHUB_LOGIN)")
		fHours  = flag.Int("hours", -1, "also read the last N GH Archive hours, 0 disables")
		fPages  = flag.Int("pages", -1, "REST events pages to read, 0 disables")
		fGap    = flag.String("gap", "", "group adjacency window, e.g. 15m, 2h, 1d")
		fTable  = flag.String("table", "", "activity table name")
		fDryRun = flag.Bool("dry-run", false, "crawl and merge without saving")
		fLimit  = flag.Int("limit", 0, "max groups to print, 0 prints all")
		fVitals = flag.Bool("vitals", false, "run the vitals check after grouping")
	)
	flag.Parse()

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// surface flags to modules that read FromConfig
	mustSetEnv("CORE_TIMELINE_GITHUB_LOGIN", *fLogin)
	mustSetEnv("CORE_TIMELINE_GAP", *fGap)
	mustSetEnv("CORE_TIMELINE_TABLE", *fTable)
	if *fHours >= 0 {
		mustSetEnv("CORE_TIMELINE_ARCHIVE_HOURS", strconv.Itoa(*fHours))
	}
	if *fPages >= 0 {
		mustSetEnv("CORE_TIMELINE_GITHUB_PAGES", strconv.Itoa(*fPages))
	}
	if *fDryRun {
		mustSetEnv("CORE_TIMELINE_DRY_RUN", "1")
	}

	root := config.New()
	// set by -login or the environment
	root.Prefix("CORE_TIMELINE_").MustString("GITHUB_LOGIN")
	opts := timelinemod.FromConfig(root)

	st, err := store.Open(ctx, store.FromConfig(root, "crawl"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := api.Deps(root, st)
	deps.Log = *l
	if err := timelinemod.EnsureSchema(ctx, deps, opts); err != nil {
		l.Fatal().Err(err).Msg("timeline schema")
	}

	tl := timelinemod.NewWithOptions(deps, opts)
	module.Register(tl.Name(), tl.Ports())
	timeline := module.MustPortsOf[tldomain.ServicePort](tl)

	start := time.Now()
	res, err := timeline.Refresh(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("refresh failed")
	}
	l.Info().
		Str("run_id", res.RunID).
		Int("crawled", res.Crawled).
		Int("added", res.Added).
		Int("stored", res.Stored).
		Dur("elapsed", time.Since(start)).
		Msg("refresh done")

	groups, err := timeline.Groups(ctx, tldomain.GroupsInput{Limit: *fLimit})
	if err != nil {
		l.Fatal().Err(err).Msg("groups failed")
	}
	enc := json.NewEncoder(os.Stdout)
	for _, g := range groups.Groups {
		if err := enc.Encode(g); err != nil {
			l.Fatal().Err(err).Msg("write group")
		}
	}

	if *fVitals {
		vo := vitalsmod.FromConfig(root)
		if !vo.Enabled() {
			l.Fatal().Msg("-vitals needs CORE_VITALS_SUBJECT and SERVICE_ORACLE_BASE_URL")
		}
		vm := vitalsmod.NewWithOptions(deps, vo)
		module.Register(vm.Name(), vm.Ports())
		d, ok := module.PortsAs[diagnoser](vm.Name())
		if !ok {
			l.Fatal().Msg("vitals ports missing")
		}
		dead := d.RunDiagnostics(ctx)
		l.Info().Str("subject", vo.Service.Subject).Bool("deceased", dead).Msg("vitals")
	}
}
