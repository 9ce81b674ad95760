// Package logger wraps zerolog with process defaults and context-scoped ids
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level        string // zerolog level name, unknown means debug
	Format       string // console or json
	Service      string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* directly; the config package logs through us so it cannot be used here
func FromEnv() Options {
	return Options{
		Level:       strings.ToLower(env("LOG_LEVEL", "debug")),
		Format:      strings.ToLower(env("LOG_FORMAT", "console")),
		Service:     env("LOG_SERVICE", "pulse"),
		Component:   env("LOG_COMPONENT", ""),
		WithCaller:  isTrue(env("LOG_CALLER", "")),
		SampleEvery: atoi(env("LOG_SAMPLE_EVERY", ""), 0),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func isTrue(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Get returns the process-wide root logger, building it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Init builds the root logger; only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		zc := zerolog.New(w).Level(level(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok {
			zc = zc.Str("go_version", bi.GoVersion)
		}
		fields := map[string]string{"service": opt.Service, "component": opt.Component}
		for k, v := range opt.StaticFields {
			fields[k] = v
		}
		for k, v := range fields {
			if v != "" {
				zc = zc.Str(k, v)
			}
		}
		if opt.WithCaller {
			zc = zc.Caller()
		}

		l := zc.Logger()
		if opt.SampleEvery > 1 {
			l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}
		root.Store(&l)
	})
}

// level maps a name onto a zerolog level; "warning" is accepted and anything unknown is debug
func level(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return l
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyRunID
)

// WithRequest annotates ctx with the ids C attaches to log lines
// runID ties every line of one timeline refresh or crawl together
func WithRequest(ctx context.Context, reqID, runID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if runID != "" {
		ctx = context.WithValue(ctx, keyRunID, runID)
	}
	return ctx
}

// WithRun annotates ctx with a run id, keeping any request id already present
func WithRun(ctx context.Context, runID string) context.Context {
	return WithRequest(ctx, "", runID)
}

// IDs returns the request and run ids carried by ctx, empty when absent
func IDs(ctx context.Context) (reqID, runID string) {
	reqID, _ = ctx.Value(keyRequestID).(string)
	runID, _ = ctx.Value(keyRunID).(string)
	return reqID, runID
}

// C returns a child of the root logger carrying the ids in ctx
func C(ctx context.Context) *Logger {
	reqID, runID := IDs(ctx)
	zc := Get().With()
	if reqID != "" {
		zc = zc.Str("request_id", reqID)
	}
	if runID != "" {
		zc = zc.Str("run_id", runID)
	}
	l := zc.Logger()
	return &l
}
