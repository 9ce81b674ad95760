package module

import (
	"strings"
	"time"

	"pulse/internal/core/activity"
	"pulse/internal/core/timespan"
	"pulse/internal/platform/config"
	"pulse/internal/platform/logger"
	"pulse/internal/platform/net/http/bind"
	"pulse/internal/services/timeline/repo"
	"pulse/internal/services/timeline/service"
)

// Options holds configuration options for the timeline module
type Options struct {
	Table      string
	Backend    string
	Dir        string
	MaxEntries int
	Gap        timespan.Timespan
	Roots      []activity.Kind
	DryRun     bool

	// GitHub REST walker, disabled when Login is empty
	GitHubLogin   string
	GitHubPages   int
	GitHubPerPage int
	GitHubTokens  string
	GitHubBaseURL string
	FeedCacheTTL  time.Duration

	// GH Archive walker, disabled when ArchiveHours is 0
	ArchiveHours   int
	ArchiveDir     string
	ArchiveTimeout time.Duration
}

// FromConfig reads the timeline options from config with CORE_TIMELINE_ prefix
// GitHub credentials come from SERVICE_GITHUB_
func FromConfig(cfg config.Conf) Options {
	tl := cfg.Prefix("CORE_TIMELINE_")
	gh := cfg.Prefix("SERVICE_GITHUB_")

	gap := service.DefaultGap
	if s := tl.MayString("GAP", ""); s != "" {
		ts, err := timespan.Parse(s)
		if err != nil || ts.Duration() <= 0 {
			logger.Get().Panic().Str("key", "CORE_TIMELINE_GAP").Str("value", s).Msg("invalid gap")
		}
		gap = ts
	}

	var roots []activity.Kind
	for _, s := range tl.MayCSV("ROOTS", nil) {
		k, err := activity.ParseKind(s)
		if err != nil {
			logger.Get().Panic().Str("key", "CORE_TIMELINE_ROOTS").Str("value", s).Msg("invalid root kind")
		}
		roots = append(roots, k)
	}

	login := tl.MayString("GITHUB_LOGIN", "")
	if login != "" {
		if err := bind.Var("CORE_TIMELINE_GITHUB_LOGIN", login, "handle"); err != nil {
			logger.Get().Panic().Err(err).Msg("invalid login")
		}
	}

	return Options{
		Table:      tl.MayString("TABLE", service.DefaultTable),
		Backend:    strings.ToLower(tl.MayEnum("BACKEND", repo.BackendFile, repo.BackendFile, repo.BackendPG, repo.BackendRedis)),
		Dir:        tl.MayString("DIR", "./data"),
		MaxEntries: tl.MayInt("MAX_ENTRIES", service.DefaultMaxEntries),
		Gap:        gap,
		Roots:      roots,
		DryRun:     tl.MayBool("DRY_RUN", false),

		GitHubLogin:   login,
		GitHubPages:   tl.MayInt("GITHUB_PAGES", 3),
		GitHubPerPage: tl.MayInt("GITHUB_PER_PAGE", 100),
		GitHubTokens:  gh.MayString("TOKENS", ""),
		GitHubBaseURL: gh.MayString("BASE_URL", ""),
		FeedCacheTTL:  tl.MayDuration("FEED_CACHE_TTL", 24*time.Hour),

		ArchiveHours:   tl.MayInt("ARCHIVE_HOURS", 0),
		ArchiveDir:     tl.MayString("ARCHIVE_DIR", ""),
		ArchiveTimeout: tl.MayDuration("ARCHIVE_TIMEOUT", 10*time.Minute),
	}
}
