// Package store opens the optional backends a process is configured for
// and exposes each through a small seam repos can fake
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulse/internal/platform/logger"
)

// Store holds whichever backends were enabled; disabled ones stay nil.
// The zero value is usable and has nothing open.
type Store struct {
	Log logger.Logger

	PG  TxRunner
	CH  Clickhouse
	RDS KV
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner adds transactions; fn's querier is bound to the transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse takes positional rows that line up with columns
type Clickhouse interface {
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// KV is a byte cache; Get on a missing key is a NotFound error
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

type Pinger interface{ Ping(context.Context) error }

// Open connects every backend enabled in cfg. A failure closes what was
// already opened and returns a nil Store.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	steps := []struct {
		on   bool
		open func() error
	}{
		{cfg.PG.Enabled, func() (err error) { s.PG, err = openPG(ctx, cfg.PG, s.Log); return }},
		{cfg.CH.Enabled, func() (err error) { s.CH, err = openCH(ctx, cfg.CH); return }},
		{cfg.RDS.Enabled, func() (err error) { s.RDS, err = openRDS(ctx, cfg.RDS); return }},
	}
	for _, st := range steps {
		if !st.on {
			continue
		}
		if err := st.open(); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

type seam struct {
	name string
	v    any
}

// seams lists open backends in close order
func (s *Store) seams() []seam {
	var out []seam
	if s.RDS != nil {
		out = append(out, seam{"rds", s.RDS})
	}
	if s.CH != nil {
		out = append(out, seam{"ch", s.CH})
	}
	if s.PG != nil {
		out = append(out, seam{"pg", s.PG})
	}
	return out
}

// Guard pings every open backend that can ping; errors carry the backend name
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, sm := range s.seams() {
		if p, ok := sm.v.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sm.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend and joins their errors
func (s *Store) Close(context.Context) error {
	var errs []error
	for _, sm := range s.seams() {
		if c, ok := sm.v.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
