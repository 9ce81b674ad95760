package gharchive

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	perr "pulse/internal/platform/errors"
)

// BaseURL is the public archive host
const BaseURL = "https://data.gharchive.org"

// Fetcher opens the gzip body of one archive hour
type Fetcher interface {
	Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error)
}

// HTTPFetcher downloads hours straight from the archive host
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTPFetcherWithTimeout returns an HTTPFetcher on BaseURL; d <= 0 means no timeout
func NewHTTPFetcherWithTimeout(d time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: max(d, 0)}, BaseURL: BaseURL}
}

func (f *HTTPFetcher) hourURL(hour HourRef) string {
	base := f.BaseURL
	if base == "" {
		base = BaseURL
	}
	return strings.TrimRight(base, "/") + "/" + hour.String() + ".json.gz"
}

func (f *HTTPFetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// Fetch returns the open body; the caller closes it
func (f *HTTPFetcher) Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error) {
	url := f.hourURL(hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gharchive: fetch %s", hour)
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	_ = resp.Body.Close()
	return nil, statusError(resp.StatusCode, url)
}

// statusError maps a non-200 archive response; 404 means the hour is not published yet
func statusError(status int, url string) error {
	if status == http.StatusNotFound {
		return perr.NotFoundf("gharchive: %s not published", url)
	}
	return perr.Unavailablef("gharchive: unexpected status %d for %s", status, url)
}
