// Package oracle asks a text generation endpoint a yes or no question
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	pstrings "pulse/internal/platform/strings"
)

const (
	generatePath       = "/api/ai/generate"
	defaultMaxTokens   = 16
	defaultTemperature = 0.0
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultRetryBase   = 100 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryBase   time.Duration
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Client calls the generate endpoint
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewClient builds a Client; BaseURL is required
func NewClient(o Options) (*Client, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		return nil, perr.InvalidArgf("oracle: base url is required")
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Temperature < 0 {
		o.Temperature = defaultTemperature
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("oracle"),
		sleep: sleepCtx,
	}, nil
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

// Ask sends prompt and maps the reply to a bool
func (c *Client) Ask(ctx context.Context, prompt string) (bool, error) {
	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return false, err
	}
	return Verdict(text)
}

// Generate returns the raw completion text for prompt
// transport failures and 5xx replies are retried with exponential backoff
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", perr.InvalidArgf("oracle: empty prompt")
	}
	body, err := json.Marshal(generateRequest{
		Prompt:      prompt,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "oracle: encode request")
	}

	var last error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			back := c.opts.RetryBase << uint(attempt-1)
			c.log.Warn().Err(last).Int("attempt", attempt).Dur("retry_in", back).Msg("oracle retrying")
			if err := c.sleep(ctx, back); err != nil {
				return "", err
			}
		}
		text, err := c.once(ctx, body)
		if err == nil {
			return text, nil
		}
		last = err
		if !perr.Retryable(err) {
			return "", err
		}
	}
	return "", last
}

func (c *Client) once(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "oracle: new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "oracle: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", perr.TooManyRequestsf("oracle: rate limited")
	case resp.StatusCode >= 500:
		return "", perr.Unavailablef("oracle: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", perr.Newf(perr.ErrorCodeUnknown, "oracle: status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "oracle: decode response")
	}
	return out.Text, nil
}

// Verdict maps a reply starting with yes or no to a bool
// leading punctuation and case are ignored; "Yes." and "no, ..." both count
func Verdict(text string) (bool, error) {
	s := pstrings.Fold(strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
	word := s
	if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		word = s[:i]
	}
	switch word {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, perr.Validationf("text", "oracle: ambiguous answer %q", clip(text, 64))
}

// clip keeps the first n runes of s
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
