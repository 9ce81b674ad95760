// Package service contains the timeline workflows: refresh the stored table from
// the configured walkers, list it, and partition it into activity groups
package service

import (
	"context"
	"sync"
	"time"

	"pulse/internal/core/activity"
	"pulse/internal/core/collector"
	"pulse/internal/core/timespan"
	"pulse/internal/core/walker"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	"pulse/internal/services/timeline/domain"

	"github.com/google/uuid"
)

// Defaults applied by New
const (
	DefaultTable      = "activities"
	DefaultMaxEntries = 5000
)

// DefaultGap is the adjacency window used when none is configured
var DefaultGap = timespan.Minutes(15)

// Source builds a fresh walker for one refresh; crawls are single use
type Source func() walker.Walker

// Config controls the timeline service
type Config struct {
	Table      string
	Gap        timespan.Timespan
	MaxEntries int
	Roots      []activity.Kind
	// DryRun keeps saved tables in process memory; the backing store is only read
	DryRun bool
}

// Service defines the timeline service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the timeline service
type Svc struct {
	cfg     Config
	store   domain.TableStore
	sink    domain.GroupSink
	sources []Source

	// one refresh at a time per process
	refreshing sync.Mutex

	now   func() time.Time
	newID func() string
}

// New constructs a timeline service; sink may be nil
func New(cfg Config, st domain.TableStore, sink domain.GroupSink, sources ...Source) *Svc {
	if st == nil {
		panic("timeline.Service requires a non nil TableStore")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.Gap.IsZero() {
		cfg.Gap = DefaultGap
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = activity.Kinds()
	}
	if cfg.DryRun {
		st = newScratch(st)
	}
	return &Svc{
		cfg:     cfg,
		store:   st,
		sink:    sink,
		sources: sources,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Refresh crawls every source, merges the result into the stored table and saves it
// fresh activities win identity clashes with stored ones
func (s *Svc) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	if !s.refreshing.TryLock() {
		return domain.RefreshResult{}, perr.Conflictf("timeline: refresh already running")
	}
	defer s.refreshing.Unlock()

	runID := s.newID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx).With().Str("component", "timeline").Str("table", s.cfg.Table).Logger()
	start := s.now()

	walkers := make([]walker.Walker, 0, len(s.sources))
	for _, src := range s.sources {
		walkers = append(walkers, src())
	}

	crawled, err := walker.CollectAll(ctx, walkers...)
	if err != nil {
		log.Error().Err(err).Msg("crawl failed")
		return domain.RefreshResult{}, perr.WithOp(err, "timeline.refresh")
	}

	stored, err := s.store.Load(ctx, s.cfg.Table)
	if err != nil {
		return domain.RefreshResult{}, perr.WithOp(err, "timeline.load")
	}

	merged := activity.Merge(crawled, stored)
	added := len(merged) - len(activity.Dedupe(stored))
	if added < 0 {
		added = 0
	}
	if len(merged) > s.cfg.MaxEntries {
		merged = merged[:s.cfg.MaxEntries]
	}

	if err := s.store.Save(ctx, s.cfg.Table, merged); err != nil {
		return domain.RefreshResult{}, perr.WithOp(err, "timeline.save")
	}

	res := domain.RefreshResult{
		RunID:      runID,
		Table:      s.cfg.Table,
		Crawled:    len(crawled),
		Added:      added,
		Stored:     len(merged),
		Walkers:    len(walkers),
		FinishedAt: s.now().UTC(),
	}
	log.Info().
		Int("walkers", res.Walkers).
		Int("crawled", res.Crawled).
		Int("added", res.Added).
		Int("stored", res.Stored).
		Bool("dry_run", s.cfg.DryRun).
		Dur("elapsed", s.now().Sub(start)).
		Msg("refresh finished")
	return res, nil
}

// Activities returns a filtered window of the stored table
func (s *Svc) Activities(ctx context.Context, in domain.ActivitiesInput) (domain.ActivitiesPage, error) {
	xs, err := s.store.Load(ctx, s.cfg.Table)
	if err != nil {
		return domain.ActivitiesPage{}, err
	}

	var kind activity.Kind
	if in.Kind != "" {
		if kind, err = activity.ParseKind(in.Kind); err != nil {
			return domain.ActivitiesPage{}, perr.WithField(err, "kind")
		}
	}
	xs = activity.Filter(xs, func(a activity.Activity) bool {
		return (kind == activity.None || a.Kind() == kind) &&
			(in.Platform == "" || a.Platform() == in.Platform)
	})

	limit := in.Limit
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	offset := min(max(in.Offset, 0), len(xs))
	end := min(offset+limit, len(xs))

	return domain.ActivitiesPage{
		Items:  activity.ExportAll(xs[offset:end]),
		Total:  len(xs),
		Offset: offset,
		Limit:  limit,
	}, nil
}

// Groups partitions the stored table and reports each group to the sink when one is set
// a failing sink is logged; the groups are still returned
func (s *Svc) Groups(ctx context.Context, in domain.GroupsInput) (domain.GroupsResult, error) {
	gap := s.cfg.Gap
	if in.Gap != "" {
		g, err := timespan.Parse(in.Gap)
		if err != nil || g.Duration() <= 0 {
			return domain.GroupsResult{}, perr.Validationf("gap", "gap %q must be a positive duration like 15m or 1d", in.Gap)
		}
		gap = g
	}

	xs, err := s.store.Load(ctx, s.cfg.Table)
	if err != nil {
		return domain.GroupsResult{}, err
	}

	groups := collector.New(gap, s.cfg.Roots...).Partition(xs)
	if in.Limit > 0 && len(groups) > in.Limit {
		groups = groups[:in.Limit]
	}
	rows := make([]domain.GroupRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, ToRow(g))
	}

	if s.sink != nil && len(rows) > 0 {
		_, runID := logger.IDs(ctx)
		if runID == "" {
			runID = s.newID()
		}
		if err := s.sink.WriteGroups(ctx, runID, s.cfg.Table, rows); err != nil {
			logger.C(ctx).Warn().Err(err).Int("groups", len(rows)).Msg("group report failed")
		}
	}

	return domain.GroupsResult{Gap: gap.Duration().String(), Groups: rows}, nil
}

// ToRow flattens a group into its report form
func ToRow(g collector.Group) domain.GroupRow {
	row := domain.GroupRow{
		Root:       string(g.Root),
		Size:       g.Len(),
		Newest:     g.Newest(),
		Oldest:     g.Oldest(),
		Span:       g.Span().String(),
		SpanMillis: g.Span().Millis(),
		Items:      activity.ExportAll(g.Items),
	}
	if g.Len() > 0 {
		row.Platform = g.Items[0].Platform()
		row.Repository = activity.SubjectOf(g.Items[0]).Repository
	}
	return row
}
