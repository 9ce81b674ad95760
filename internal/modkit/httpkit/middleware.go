package httpkit

import (
	"net/http"
	"time"

	"pulse/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Timeout     time.Duration
	SlowRequest time.Duration
	CORS        middleware.CORSOptions
}

// CommonStack returns the baseline middleware for the versioned api
// request ids come first so the access log and recover handler can see them
func CommonStack(o ...StackOptions) []func(http.Handler) http.Handler {
	var opt StackOptions
	if len(o) > 0 {
		opt = o[0]
	}
	if opt.SlowRequest <= 0 {
		opt.SlowRequest = 2 * time.Second
	}
	stack := middleware.Defaults(opt.Timeout)
	return append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: opt.SlowRequest,
			Skip: []string{"/health"},
		}),
		middleware.CORS(opt.CORS),
		middleware.Heartbeat("/health"),
	)
}
