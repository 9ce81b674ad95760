// Package module wires the timeline into the API using modkit
package module

import (
	"context"
	"time"

	"pulse/internal/adapters/ingest/gharchive"
	"pulse/internal/adapters/ingest/github"
	"pulse/internal/core/walker"
	modkit "pulse/internal/modkit"
	"pulse/internal/modkit/httpkit"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	str "pulse/internal/platform/strings"
	"pulse/internal/services/timeline/domain"
	tlhttp "pulse/internal/services/timeline/http"
	tlrepo "pulse/internal/services/timeline/repo"
	tlsvc "pulse/internal/services/timeline/service"
)

// Module implements the timeline module
type Module struct {
	b     modkit.Built
	ports any
	svc   tlsvc.Service
}

// New constructs the timeline module from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the timeline module from explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("timeline"), modkit.WithPrefix("/timeline")}, opts...)...)

	svc, err := NewService(deps, o)
	if err != nil {
		logger.Get().Panic().Err(err).Msg("timeline module")
	}

	return &Module{b: b, svc: svc, ports: adaptTimelinePort{svc: svc}}
}

// NewService builds the timeline service with the store, sink and walkers o selects
func NewService(deps modkit.Deps, o Options) (*tlsvc.Svc, error) {
	st, err := tableStore(deps, o)
	if err != nil {
		return nil, err
	}
	var sink domain.GroupSink
	if deps.CH != nil {
		sink = tlrepo.NewCH(deps.CH)
	}
	cfg := tlsvc.Config{
		Table:      o.Table,
		Gap:        o.Gap,
		MaxEntries: o.MaxEntries,
		Roots:      o.Roots,
		DryRun:     o.DryRun,
	}
	return tlsvc.New(cfg, st, sink, Sources(deps, o)...), nil
}

func tableStore(deps modkit.Deps, o Options) (domain.TableStore, error) {
	if err := tlrepo.ValidTable(o.Table); err != nil {
		return nil, err
	}
	switch o.Backend {
	case tlrepo.BackendPG:
		if deps.PG == nil {
			return nil, perr.InvalidArgf("timeline: backend %q needs postgres", o.Backend)
		}
		return tlrepo.NewPG(deps.PG), nil
	case tlrepo.BackendRedis:
		if deps.RDS == nil {
			return nil, perr.InvalidArgf("timeline: backend %q needs redis", o.Backend)
		}
		return tlrepo.NewKV(deps.RDS), nil
	case tlrepo.BackendFile, "":
		return tlrepo.NewFile(o.Dir), nil
	default:
		return nil, perr.InvalidArgf("timeline: unknown backend %q", o.Backend)
	}
}

// Sources returns one walker source per configured platform
// both platforms are keyed on the GitHub login
func Sources(deps modkit.Deps, o Options) []tlsvc.Source {
	if o.GitHubLogin == "" {
		return nil
	}
	var out []tlsvc.Source

	if o.GitHubPages > 0 {
		client := github.NewClient(github.Options{
			BaseURL:   o.GitHubBaseURL,
			TokensCSV: o.GitHubTokens,
		})
		var cache github.FeedCache = github.NewMemoryCache()
		if deps.RDS != nil {
			cache = github.NewKVCache(deps.RDS, o.FeedCacheTTL)
		}
		wo := github.WalkerOptions{Login: o.GitHubLogin, Pages: o.GitHubPages, PerPage: o.GitHubPerPage, Cache: cache}
		out = append(out, func() walker.Walker { return github.NewWalker(client, wo) })
	}

	if o.ArchiveHours > 0 {
		base := gharchive.NewHTTPFetcherWithTimeout(o.ArchiveTimeout)
		var f gharchive.Fetcher = base
		if o.ArchiveDir != "" {
			f = gharchive.NewCachedFetcher(o.ArchiveDir, base, gharchive.WithRefreshRecent(2*time.Hour))
		}
		login, hours := o.GitHubLogin, o.ArchiveHours
		out = append(out, func() walker.Walker {
			return gharchive.NewWalker(f, gharchive.WalkerOptions{
				Login:       login,
				Hours:       gharchive.LastHours(time.Now(), hours),
				SkipMissing: true,
			})
		})
	}
	return out
}

// EnsureSchema creates the tables the configured backends need
func EnsureSchema(ctx context.Context, deps modkit.Deps, o Options) error {
	if o.Backend == tlrepo.BackendPG && deps.PG != nil {
		if err := tlrepo.NewPG(deps.PG).EnsureSchema(ctx); err != nil {
			return err
		}
	}
	if deps.CH != nil {
		if err := tlrepo.NewCH(deps.CH).EnsureSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { tlhttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
