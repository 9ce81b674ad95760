package middleware

import (
	"net/http"
	"runtime/debug"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	pnet "pulse/internal/platform/net"
	phttp "pulse/internal/platform/net/http"
)

// RecoverJSON turns a panic into a 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			phttp.Write(w, r, phttp.Error(perr.PanicErrf("panic recovered")))
		}()
		next.ServeHTTP(w, r)
	})
}
