package repo

import (
	"context"
	"errors"

	"pulse/internal/core/activity"
	"pulse/internal/modkit/repokit"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/store"
)

// SchemaPG creates the jsonb table store
const SchemaPG = `
create table if not exists activity_tables (
	name       text primary key,
	body       jsonb not null,
	entries    integer not null,
	updated_at timestamptz not null default now()
)`

// PG keeps each table as one jsonb row
type PG struct{ db repokit.TxRunner }

// NewPG wraps db; writes run with a bounded statement timeout
func NewPG(db repokit.TxRunner) *PG {
	if db == nil {
		panic("timeline.PG requires a non nil TxRunner")
	}
	return &PG{db: repokit.WithBeginHooks(db, statementTimeout)}
}

func statementTimeout(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `set local statement_timeout = '10s'`)
	return err
}

// EnsureSchema creates the backing table when missing
func (p *PG) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, SchemaPG); err != nil {
		return perr.FromPostgres(err, "timeline: ensure schema")
	}
	return nil
}

// Load implements domain.TableStore
func (p *PG) Load(ctx context.Context, table string) ([]activity.Activity, error) {
	if err := ValidTable(table); err != nil {
		return nil, err
	}
	body, err := store.One(ctx, p.db, scanBody, `select body from activity_tables where name = $1`, table)
	if errors.Is(err, perr.ErrNotFound) {
		return []activity.Activity{}, nil
	}
	if err != nil {
		if perr.IsUndefinedTable(err) {
			return []activity.Activity{}, nil
		}
		return nil, perr.FromPostgres(err, "timeline: load table")
	}
	return activity.UnmarshalTable(body, table)
}

// Save implements domain.TableStore
// concurrent saves of the same table serialize on an advisory lock
func (p *PG) Save(ctx context.Context, table string, xs []activity.Activity) error {
	if err := ValidTable(table); err != nil {
		return err
	}
	b, err := activity.MarshalTable(xs)
	if err != nil {
		return err
	}
	err = p.db.Tx(ctx, func(q repokit.Queryer) error {
		if _, err := q.Exec(ctx, `select pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
			return err
		}
		return store.ExecOne(ctx, q, `
insert into activity_tables (name, body, entries, updated_at)
values ($1, $2::jsonb, $3, now())
on conflict (name) do update
set body = excluded.body, entries = excluded.entries, updated_at = excluded.updated_at`,
			table, string(b), len(xs))
	})
	if err != nil {
		if perr.CodeOf(err) == perr.ErrorCodeNotFound {
			return err
		}
		return perr.FromPostgres(err, "timeline: save table")
	}
	return nil
}

func scanBody(r store.Row) ([]byte, error) {
	var b []byte
	err := r.Scan(&b)
	return b, err
}
