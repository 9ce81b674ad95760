package repo

import (
	"context"
	"time"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/store"
	"pulse/internal/services/timeline/domain"

	"github.com/google/uuid"
)

// SchemaCH creates the group report table
const SchemaCH = `
CREATE TABLE IF NOT EXISTS activity_groups (
	batch_id    UUID,
	run_id      String,
	table_name  LowCardinality(String),
	root        LowCardinality(String),
	platform    LowCardinality(String),
	repository  String,
	size        UInt32,
	newest      DateTime64(3, 'UTC'),
	oldest      DateTime64(3, 'UTC'),
	span_ms     Int64,
	reported_at DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (table_name, newest)`

var groupColumns = []string{
	"batch_id", "run_id", "table_name", "root", "platform", "repository",
	"size", "newest", "oldest", "span_ms", "reported_at",
}

// CH appends group reports to clickhouse
type CH struct {
	ch    store.Clickhouse
	table string
	now   func() time.Time
	newID func() uuid.UUID
}

// NewCH wraps a clickhouse seam writing to activity_groups
func NewCH(c store.Clickhouse) *CH {
	if c == nil {
		panic("timeline.CH requires a non nil clickhouse")
	}
	return &CH{ch: c, table: "activity_groups", now: time.Now, newID: uuid.New}
}

// EnsureSchema creates the report table when missing
func (c *CH) EnsureSchema(ctx context.Context) error {
	if err := c.ch.Exec(ctx, SchemaCH); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "timeline: ensure group schema")
	}
	return nil
}

// WriteGroups implements domain.GroupSink; one batch id per call
func (c *CH) WriteGroups(ctx context.Context, runID, table string, rows []domain.GroupRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := c.newID()
	at := c.now().UTC()
	out := make([][]any, 0, len(rows))
	for _, g := range rows {
		out = append(out, []any{
			batch, runID, table, g.Root, g.Platform, g.Repository,
			uint32(g.Size), g.Newest.UTC(), g.Oldest.UTC(), g.SpanMillis, at,
		})
	}
	return c.ch.Insert(ctx, c.table, groupColumns, out)
}
