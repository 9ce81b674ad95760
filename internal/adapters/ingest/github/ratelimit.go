package github

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// rateLimit is what the API reports about the caller's quota
// remaining is -1 when the response carried no quota header
type rateLimit struct {
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

func readRate(h http.Header) rateLimit {
	num := func(k string) int64 {
		v, _ := strconv.ParseInt(h.Get(k), 10, 64)
		return v
	}
	rl := rateLimit{
		remaining:  -1,
		retryAfter: time.Duration(num("Retry-After")) * time.Second,
	}
	if h.Get("X-RateLimit-Remaining") != "" {
		rl.remaining = int(num("X-RateLimit-Remaining"))
	}
	if s := num("X-RateLimit-Reset"); s > 0 {
		rl.reset = time.Unix(s, 0).UTC()
	}
	return rl
}

// limited tells a spent quota or a secondary limit apart from a plain 403
func (rl rateLimit) limited() bool {
	return rl.retryAfter > 0 || rl.remaining == 0
}

// wait prefers Retry-After, then the reset time once the quota is spent
func (rl rateLimit) wait(now time.Time) time.Duration {
	if rl.retryAfter > 0 {
		return rl.retryAfter
	}
	if rl.remaining == 0 && rl.reset.After(now) {
		return rl.reset.Sub(now)
	}
	return 0
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	_ = rc.Close()
}
