package logger

import (
	"bytes"
	"context"
	"testing"

	kit "pulse/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":     zerolog.TraceLevel,
		"info":      zerolog.InfoLevel,
		" WARNING ": zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"":          zerolog.DebugLevel,
		"nonsense":  zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := level(in); got != want {
			t.Fatalf("level(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "pulse-crawl")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "x")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "pulse-crawl" {
		t.Fatalf("FromEnv %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 0 {
		t.Fatalf("caller/sample %+v", opt)
	}
}

func TestInit_NamedAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "info",
		Format:       "json",
		Service:      "pulse-api",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "test"},
	})

	Named("timeline").Info().Msg("named-msg")
	ctx := WithRun(WithRequest(context.Background(), "req-123", ""), "run-abc")
	C(ctx).Info().Msg("ctx-msg")
	Get().Debug().Msg("below-level")

	out := buf.String()
	for _, want := range []string{
		`"component":"timeline"`, `"request_id":"req-123"`, `"run_id":"run-abc"`,
		`"service":"pulse-api"`, `"build":"test"`, "ctx-msg",
	} {
		kit.MustContain(t, out, want)
	}
	if bytes.Contains(buf.Bytes(), []byte("below-level")) {
		t.Fatalf("debug line leaked at info level: %s", out)
	}
}

func TestIDs(t *testing.T) {
	req, run := IDs(WithRequest(context.Background(), "req-1", "run-1"))
	if req != "req-1" || run != "run-1" {
		t.Fatalf("IDs = %q %q", req, run)
	}
	if req, run = IDs(context.Background()); req != "" || run != "" {
		t.Fatalf("IDs on empty ctx = %q %q", req, run)
	}
}
