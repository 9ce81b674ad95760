package middleware

import (
	"net/http"
	"slices"
	"time"

	"pulse/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures AccessLogZerolog
type AccessLogOptions struct {
	// Slow logs requests at or above it as warn; 0 never does
	Slow time.Duration
	// Skip holds exact paths that are never logged
	Skip []string
	// Log replaces the request scoped logger when set
	Log *logger.Logger
}

// AccessLogZerolog writes one line per request through the request scoped
// logger: 5xx at error, slow requests at warn, the rest at info
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(opt.Skip, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			lvl := zerolog.InfoLevel
			switch {
			case status >= http.StatusInternalServerError:
				lvl = zerolog.ErrorLevel
			case opt.Slow > 0 && elapsed >= opt.Slow:
				lvl = zerolog.WarnLevel
			}
			log := opt.Log
			if log == nil {
				log = logger.C(r.Context())
			}
			log.WithLevel(lvl).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}

// routePattern is the matched chi pattern, so lines group by endpoint
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
