package net_test

import (
	"context"
	"testing"

	pnet "pulse/internal/platform/net"
)

func TestWithRequest_And_Getters(t *testing.T) {
	base := context.Background()

	t.Run("sets both ids", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "req-123", "run-abc")

		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
		if got := pnet.RunID(ctx); got != "run-abc" {
			t.Fatalf("RunID got %q want %q", got, "run-abc")
		}
	})

	t.Run("sets only request id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "r-only", "")

		if got := pnet.RequestID(ctx); got != "r-only" {
			t.Fatalf("RequestID got %q want %q", got, "r-only")
		}
		if got := pnet.RunID(ctx); got != "" {
			t.Fatalf("RunID got %q want empty", got)
		}
	})

	t.Run("empty context", func(t *testing.T) {
		if pnet.RequestID(base) != "" || pnet.RunID(base) != "" {
			t.Fatalf("expected empty ids on background context")
		}
	})
}
