package rds

import (
	"context"
	"testing"
	"time"

	perr "pulse/internal/platform/errors"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetGet_Prefixed(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "feed:octocat", []byte(`{"n":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "feed:octocat")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"n":1}` {
		t.Fatalf("Get = %q", got)
	}
	if !mr.Exists("pulse:feed:octocat") {
		t.Fatalf("expected key under default prefix, have %v", mr.Keys())
	}
}

func TestGet_MissingIsNotFound(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Get(context.Background(), "nope")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSet_TTLExpires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := c.Get(ctx, "k"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestDel(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Del(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("keys left: %v", mr.Keys())
	}
	if err := c.Del(ctx); err != nil {
		t.Fatalf("empty Del: %v", err)
	}
}

func TestOpen_URLAndCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), Config{URL: "redis://" + mr.Addr() + "/0", Prefix: "t:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if c.Key("x") != "t:x" {
		t.Fatalf("Key = %q", c.Key("x"))
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := Open(context.Background(), Config{URL: "ftp://x"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument for bad scheme, got %v", err)
	}
}

func TestPing_Down(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()
	if err := c.Ping(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
