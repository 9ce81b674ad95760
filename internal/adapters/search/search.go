// Package search is a client for a custom-search style JSON API
// GET {base}?key=..&cx=..&q=..&num=.. returning {"items":[{title,link,snippet}]}
package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultBaseURL is the custom search JSON endpoint
	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	defaultNum     = 5
	maxNum         = 10
	defaultTimeout = 10 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL string
	Key     string
	CX      string
	Num     int
	Timeout time.Duration
}

// Result is one search hit
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client queries the search API
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient builds a Client; BaseURL is required
func NewClient(o Options) (*Client, error) {
	if _, err := url.ParseRequestURI(o.BaseURL); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "search: base url")
	}
	if o.Num <= 0 {
		o.Num = defaultNum
	}
	if o.Num > maxNum {
		o.Num = maxNum
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("search"),
	}, nil
}

// Normalize folds a query to NFKC and collapses runs of whitespace
func Normalize(q string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(q)), " ")
}

// Search runs q and returns de-duplicated html results in provider order
func (c *Client) Search(ctx context.Context, q string) ([]Result, error) {
	q = Normalize(q)
	if q == "" {
		return nil, perr.InvalidArgf("search: empty query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q), nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "search: new request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "search: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Str("q", q).Msg("search response")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, perr.TooManyRequestsf("search: rate limited")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, perr.Unavailablef("search: status %d body %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
			Mime    string `json:"mime"`
		} `json:"items"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "search: decode response")
	}

	seen := make(map[string]bool, len(out.Items))
	results := make([]Result, 0, len(out.Items))
	for _, it := range out.Items {
		// documents like pdfs carry a mime; pages do not
		if it.Mime != "" && !strings.Contains(it.Mime, "html") {
			continue
		}
		if it.Link == "" || seen[it.Link] {
			continue
		}
		seen[it.Link] = true
		results = append(results, Result{
			Title:   strings.TrimSpace(it.Title),
			Link:    it.Link,
			Snippet: Normalize(it.Snippet),
		})
	}
	return results, nil
}

func (c *Client) searchURL(q string) string {
	u, _ := url.Parse(c.opts.BaseURL)
	params := u.Query()
	if c.opts.Key != "" {
		params.Set("key", c.opts.Key)
	}
	if c.opts.CX != "" {
		params.Set("cx", c.opts.CX)
	}
	params.Set("q", q)
	params.Set("num", strconv.Itoa(c.opts.Num))
	u.RawQuery = params.Encode()
	return u.String()
}
