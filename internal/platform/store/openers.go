package store

import (
	"context"
	"fmt"
	"time"

	"pulse/internal/platform/logger"
	chx "pulse/internal/platform/store/ch"
	"pulse/internal/platform/store/pg"
	"pulse/internal/platform/store/rds"
)

const (
	pingBackoffStart = 150 * time.Millisecond
	pingBackoffMax   = 2 * time.Second
)

// openPG waits for the pool to answer a ping before handing out the adapter
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	var lastErr error
	wait := pingBackoffStart
	for i := 0; i < attempts; i++ {
		if lastErr = pingOnce(ctx, p, timeout); lastErr == nil {
			return newPGAdapter(p), nil
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Dur("retry_in", wait).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, pingBackoffMax)
	}
	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

// pingOnce goes to the pool directly so readiness probes stay out of the sql trace
func pingOnce(ctx context.Context, p *pg.PG, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Pool.Ping(ctx)
}

func openCH(ctx context.Context, cfg CHConfig) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:          cfg.URL,
		Role:         cfg.Role,
		Tag:          cfg.Tag,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

// the redis client already satisfies KV
func openRDS(ctx context.Context, cfg RedisConfig) (KV, error) {
	c, err := rds.Open(ctx, rds.Config{URL: cfg.URL, Addr: cfg.Addr, DB: cfg.DB, Prefix: cfg.Prefix})
	if err != nil {
		return nil, err
	}
	return c, nil
}
