package repo

import (
	"context"
	"strings"
	"testing"

	"pulse/internal/core/activity"
	"pulse/internal/modkit/repokit"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/store"
)

type fakeTag struct{ n int64 }

func (t fakeTag) String() string      { return "" }
func (t fakeTag) RowsAffected() int64 { return t.n }

type fakeRows struct {
	bodies [][]byte
	i      int
	err    error
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.bodies) {
		return false
	}
	r.i++
	return true
}
func (r *fakeRows) Scan(dst ...any) error {
	*(dst[0].(*[]byte)) = r.bodies[r.i-1]
	return nil
}
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"body"} }

// fakeDB records statements and serves one stored body
type fakeDB struct {
	sqls  []string
	args  [][]any
	body  []byte
	qErr  error
	inTx  bool
	txSQL []string
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sqls = append(f.sqls, strings.TrimSpace(sql))
	f.args = append(f.args, args)
	if f.inTx {
		f.txSQL = append(f.txSQL, strings.TrimSpace(sql))
	}
	return fakeTag{n: 1}, nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sqls = append(f.sqls, strings.TrimSpace(sql))
	if f.qErr != nil {
		return nil, f.qErr
	}
	r := &fakeRows{}
	if f.body != nil {
		r.bodies = [][]byte{f.body}
	}
	return r, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (f *fakeDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.inTx = true
	defer func() { f.inTx = false }()
	return fn(f)
}

var _ repokit.TxRunner = (*fakeDB)(nil)

func TestPG_SaveRunsInsideLockedTx(t *testing.T) {
	db := &fakeDB{}
	p := NewPG(db)
	if err := p.Save(context.Background(), "activities", sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(db.txSQL) != 3 {
		t.Fatalf("tx statements %v", db.txSQL)
	}
	if !strings.HasPrefix(db.txSQL[0], "set local statement_timeout") ||
		!strings.Contains(db.txSQL[1], "pg_advisory_xact_lock") ||
		!strings.HasPrefix(db.txSQL[2], "insert into activity_tables") {
		t.Fatalf("order %v", db.txSQL)
	}
	args := db.args[2]
	if args[0] != "activities" || args[2] != 2 {
		t.Fatalf("args %v", args)
	}
	if !strings.HasPrefix(args[1].(string), `[{"$type":"PushActivity"`) {
		t.Fatalf("body %v", args[1])
	}
}

func TestPG_LoadMissingAndStored(t *testing.T) {
	db := &fakeDB{}
	p := NewPG(db)
	ctx := context.Background()

	got, err := p.Load(ctx, "activities")
	if err != nil || len(got) != 0 {
		t.Fatalf("missing row: %v %v", got, err)
	}

	b, _ := activity.MarshalTable(sample())
	db.body = b
	got, err = p.Load(ctx, "activities")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sameTable(t, got, sample())
}

func TestPG_LoadErrorsAreMapped(t *testing.T) {
	db := &fakeDB{qErr: perr.New(perr.ErrorCodeUnknown, "boom")}
	_, err := NewPG(db).Load(context.Background(), "activities")
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected db error, got %v", err)
	}
	if _, err := NewPG(db).Load(context.Background(), "../x"); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
