package gharchive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
)

// CachedFetcher keeps one .json.gz per hour under dir with a .meta sidecar
// hours younger than the refresh window are revalidated with ETag / Last-Modified
type CachedFetcher struct {
	dir           string
	base          *HTTPFetcher
	refreshRecent time.Duration
	now           func() time.Time
}

type cacheMeta struct {
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// CachedOption configures a CachedFetcher
type CachedOption func(*CachedFetcher)

// WithRefreshRecent revalidates cached hours within d of now
func WithRefreshRecent(d time.Duration) CachedOption {
	return func(c *CachedFetcher) { c.refreshRecent = d }
}

// NewCachedFetcher builds a disk-backed fetcher; base may be nil
func NewCachedFetcher(dir string, base *HTTPFetcher, opts ...CachedOption) *CachedFetcher {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Named("gharchive").Warn().Err(err).Str("dir", dir).Msg("cache dir")
	}
	if base == nil {
		base = &HTTPFetcher{}
	}
	if base.Client == nil {
		base.Client = &http.Client{}
	}
	c := &CachedFetcher{dir: dir, base: base, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch serves hour from disk, downloading it on a miss
func (c *CachedFetcher) Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error) {
	path := filepath.Join(c.dir, hour.String()+".json.gz")

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return c.download(ctx, hour, path, nil)
	}
	if c.refreshRecent > 0 && c.now().Sub(hour.Time()) <= c.refreshRecent {
		meta, _ := loadMeta(path + ".meta")
		if rc, err := c.download(ctx, hour, path, meta); err == nil {
			return rc, nil
		}
		// stale copy beats no copy
	}
	return os.Open(path)
}

// download GETs hour; a non-nil meta makes the request conditional and a 304 serves the disk copy
func (c *CachedFetcher) download(ctx context.Context, hour HourRef, path string, meta *cacheMeta) (io.ReadCloser, error) {
	url := c.base.hourURL(hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.base.Client.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gharchive: fetch %s", hour)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotModified && meta != nil:
		return os.Open(path)
	case resp.StatusCode != http.StatusOK:
		return nil, statusError(resp.StatusCode, url)
	}

	if err := writeAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return err
	}); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "gharchive: cache %s", hour)
	}
	_ = writeAtomic(path+".meta", func(w io.Writer) error {
		return json.NewEncoder(w).Encode(cacheMeta{
			ETag:         strings.TrimSpace(resp.Header.Get("ETag")),
			LastModified: strings.TrimSpace(resp.Header.Get("Last-Modified")),
			FetchedAt:    c.now().UTC(),
		})
	})
	return os.Open(path)
}

func loadMeta(path string) (*cacheMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m cacheMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// writeAtomic writes through a .part file then renames it over path
func writeAtomic(path string, fill func(io.Writer) error) error {
	tmp := path + ".part"
	defer func() { _ = os.Remove(tmp) }()

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
