package pg

import (
	"context"
	"fmt"
	"strings"

	"pulse/internal/platform/logger"

	"github.com/rs/zerolog"
)

// maxArgBytes caps how much of a []byte or string argument reaches the log
const maxArgBytes = 256

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement through root at info, slow ones at warn.
// The debug floor means LogSQL output survives a quieter process level.
func Tracer(root logger.Logger) QueryTracer {
	return zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	lvl := zerolog.InfoLevel
	if ev.Slow {
		lvl = zerolog.WarnLevel
	}
	e := z.log.WithLevel(lvl)
	if ctx != nil {
		if req, run := logger.IDs(ctx); req != "" || run != "" {
			e = e.Str("request_id", req).Str("run_id", run)
		}
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Interface("args", redactArgs(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// redactArgs replaces payload sized strings and bytes, raw activity json mostly
func redactArgs(args any) any {
	xs, ok := args.([]any)
	if !ok {
		return args
	}
	out := make([]any, len(xs))
	for i, a := range xs {
		out[i] = a
		var n int
		switch v := a.(type) {
		case []byte:
			n, out[i] = len(v), string(v)
		case string:
			n = len(v)
		}
		if n > maxArgBytes {
			out[i] = fmt.Sprintf("<%d bytes>", n)
		}
	}
	return out
}
