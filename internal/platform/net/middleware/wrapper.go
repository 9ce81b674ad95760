// Package middleware is the http middleware the api mounts, mostly chi's
// behind names that keep chi out of module code
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	pnet "pulse/internal/platform/net"
	pstrings "pulse/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// DefaultTimeout bounds a request when Defaults gets none; a refresh has to fit
const DefaultTimeout = 60 * time.Second

// RequestID accepts or mints X-Request-ID, echoes it back and puts it on
// the context for logger.C and the envelope
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		tag := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chimw.GetReqID(r.Context())
			if id != "" {
				w.Header().Set(chimw.RequestIDHeader, id)
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithRequest(r.Context(), id, "")))
		})
		return chimw.RequestID(tag)
	}
}

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// CORSOptions is the part of go-chi/cors the api configures
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS fills unset lists for a read-mostly json api
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

// Defaults is the outer stack; the request id is set before recovery runs
func Defaults(timeout time.Duration) []func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return []func(http.Handler) http.Handler{
		chimw.RealIP,
		RequestID(),
		RecoverJSON,
		chimw.Timeout(timeout),
		chimw.NewCompressor(flate.DefaultCompression).Handler,
		chimw.NoCache,
	}
}
