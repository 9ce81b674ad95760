package store

import (
	"context"
	"errors"
	"testing"

	"pulse/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTxRows serves a fixed set of single-column text rows
type fakeTxRows struct {
	vals []string
	i    int
}

func (r *fakeTxRows) Close()                        {}
func (r *fakeTxRows) Err() error                    { return nil }
func (r *fakeTxRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT 1") }
func (r *fakeTxRows) FieldDescriptions() []pgconn.FieldDescription {
	return []pgconn.FieldDescription{{Name: "body"}}
}
func (r *fakeTxRows) Next() bool             { r.i++; return r.i <= len(r.vals) }
func (r *fakeTxRows) Values() ([]any, error) { return []any{r.vals[r.i-1]}, nil }
func (r *fakeTxRows) RawValues() [][]byte    { return nil }
func (r *fakeTxRows) Conn() *pgx.Conn        { return nil }
func (r *fakeTxRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}

type fakeTxRow struct{ err error }

func (r fakeTxRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = 7
	return nil
}

// fakeTx implements the pgx.Tx surface the adapter touches
type fakeTx struct {
	sqls       []string
	rowErr     error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (f *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sqls = append(f.sqls, sql)
	return &fakeTxRows{vals: []string{`{"$type":"WatchActivity"}`}}, nil
}
func (f *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	return fakeTxRow{err: f.rowErr}
}
func (f *fakeTx) Begin(context.Context) (pgx.Tx, error)                { return f, nil }
func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (f *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeTx) Conn() *pgx.Conn                { return nil }
func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type tracerFunc func(context.Context, pg.QueryEvent)

func (fn tracerFunc) OnQuery(ctx context.Context, ev pg.QueryEvent) { fn(ctx, ev) }

func TestTraced_DelegatesAndTraces(t *testing.T) {
	t.Parallel()

	var events []pg.QueryEvent
	fx := &fakeTx{}
	q := traced{db: fx, slowUS: 0, tracer: tracerFunc(func(_ context.Context, ev pg.QueryEvent) {
		events = append(events, ev)
	})}
	ctx := context.Background()

	ct, err := q.Exec(ctx, "insert into activity_tables(name) values($1)", "activities")
	if err != nil || ct.RowsAffected() != 1 {
		t.Fatalf("exec: %v %v", ct, err)
	}

	rs, err := q.Query(ctx, "select body from activity_entries where table_name=$1", "activities")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if cols := rs.Columns(); len(cols) != 1 || cols[0] != "body" {
		t.Fatalf("columns %v", cols)
	}
	var bodies []string
	for rs.Next() {
		var b string
		if err := rs.Scan(&b); err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, b)
	}
	rs.Close()
	if len(bodies) != 1 {
		t.Fatalf("bodies %v", bodies)
	}

	var n int
	if err := q.QueryRow(ctx, "select count(*) from activity_entries").Scan(&n); err != nil || n != 7 {
		t.Fatalf("row: n=%d err=%v", n, err)
	}

	if len(events) != 3 || len(fx.sqls) != 3 {
		t.Fatalf("events=%d sqls=%d", len(events), len(fx.sqls))
	}
	for _, ev := range events {
		if !ev.Slow {
			t.Fatalf("slow threshold 0 should flag every statement: %+v", ev)
		}
	}
}

func TestTraced_RowScanErrorIsTraced(t *testing.T) {
	t.Parallel()

	boom := errors.New("scan failed")
	var got error
	q := traced{db: &fakeTx{rowErr: boom}, slowUS: -1, tracer: tracerFunc(func(_ context.Context, ev pg.QueryEvent) {
		got = ev.Err
	})}
	var n int
	if err := q.QueryRow(context.Background(), "select 1").Scan(&n); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if !errors.Is(got, boom) {
		t.Fatalf("tracer saw %v", got)
	}
}

func TestRunTx_CommitsOrRollsBack(t *testing.T) {
	t.Parallel()

	ok := &fakeTx{}
	if err := runTx(context.Background(), ok, nil, 0, func(RowQuerier) error { return nil }); err != nil {
		t.Fatalf("runTx: %v", err)
	}
	if !ok.committed || ok.rolledBack {
		t.Fatalf("commit=%v rollback=%v", ok.committed, ok.rolledBack)
	}

	bad := &fakeTx{}
	boom := errors.New("boom")
	if err := runTx(context.Background(), bad, nil, 0, func(RowQuerier) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if bad.committed || !bad.rolledBack {
		t.Fatalf("commit=%v rollback=%v", bad.committed, bad.rolledBack)
	}
}

func TestRetryTx(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retryTx(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("serialization: err=%v calls=%d", err, calls)
	}

	calls = 0
	perm := errors.New("syntax")
	if err := retryTx(context.Background(), 3, func() error { calls++; return perm }); !errors.Is(err, perm) || calls != 1 {
		t.Fatalf("permanent: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryTx(context.Background(), 2, func() error { calls++; return &pgconn.PgError{Code: "40P01"} })
	if err == nil || calls != 2 {
		t.Fatalf("exhausted: err=%v calls=%d", err, calls)
	}
}
