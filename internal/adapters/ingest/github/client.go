// Package github reads a user's public events feed from the GitHub REST API
package github

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
)

const (
	apiVersion  = "2022-11-28"
	maxBackoff  = 30 * time.Second
	errBodyTail = 2048
)

// Options configures the Client; zero values take defaults
type Options struct {
	BaseURL   string        // https://api.github.com
	UserAgent string        // pulse-crawl
	Timeout   time.Duration // 10s

	// TokensCSV rotates round robin per request; empty runs unauthenticated
	TokensCSV string

	MaxRetries int           // 5
	RetryBase  time.Duration // 500ms, doubled per attempt
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.github.com"
	}
	if o.UserAgent == "" {
		o.UserAgent = "pulse-crawl"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	return o
}

// Client issues conditional, rate limit aware GETs against the API
type Client struct {
	http   *http.Client
	opts   Options
	tokens []string
	next   atomic.Uint32
	log    logger.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

// NewClient builds a Client from o
func NewClient(o Options) *Client {
	o = o.withDefaults()
	c := &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("github"),
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, t := range strings.Split(o.TokensCSV, ",") {
		if t = strings.TrimSpace(t); t != "" {
			c.tokens = append(c.tokens, t)
		}
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) token() string {
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[int(c.next.Add(1))%len(c.tokens)]
}

// Do sends method path with auth and an optional If-None-Match, retrying
// transport failures, 5xx gateways and rate limits up to MaxRetries.
// 2xx and 304 responses are returned open; the caller closes the body.
func (c *Client) Do(ctx context.Context, method, path, etag string) (*http.Response, error) {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, wait, err := c.attempt(ctx, method, path, etag, n)
		if wait == 0 {
			return resp, err
		}
		if n >= c.opts.MaxRetries {
			return nil, err
		}
		if dl, ok := ctx.Deadline(); ok && c.now().Add(wait).After(dl) {
			return nil, err
		}
		c.log.Warn().Err(err).Str("path", path).Int("attempt", n).Dur("retry_in", wait).Msg("github retrying")
		if serr := c.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
}

// attempt performs one round trip; a positive wait means err is worth retrying
func (c *Client) attempt(ctx context.Context, method, path, etag string, n int) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, 0, perr.Wrap(err, perr.ErrorCodeUnknown, "github request")
	}
	h := req.Header
	h.Set("Accept", "application/vnd.github+json")
	h.Set("User-Agent", c.opts.UserAgent)
	h.Set("X-GitHub-Api-Version", apiVersion)
	if etag != "" {
		h.Set("If-None-Match", etag)
	}
	if tok := c.token(); tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.backoff(n), perr.Wrapf(err, perr.ErrorCodeUnavailable, "github %s", path)
	}
	rl := readRate(resp.Header)
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Int("rate_remaining", rl.remaining).
		Msg("github response")

	switch code := resp.StatusCode; {
	case code == http.StatusNotModified, code >= 200 && code < 300:
		return resp, 0, nil
	case code == http.StatusNotFound:
		drainAndClose(resp.Body)
		return nil, 0, perr.NotFoundf("github %s not found", path)
	case code == http.StatusTooManyRequests, code == http.StatusForbidden && rl.limited():
		drainAndClose(resp.Body)
		wait := min(rl.wait(c.now()), maxBackoff)
		if wait <= 0 {
			wait = c.backoff(n)
		}
		return nil, wait, perr.TooManyRequestsf("github rate limited on %s", path)
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		drainAndClose(resp.Body)
		return nil, c.backoff(n), perr.Unavailablef("github %s: status %d", path, code)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyTail))
		_ = resp.Body.Close()
		return nil, 0, perr.Newf(perr.ErrorCodeUnknown, "github %s: status %d: %s", path, code, tail)
	}
}

func (c *Client) backoff(n int) time.Duration {
	d := c.opts.RetryBase << uint(n)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
