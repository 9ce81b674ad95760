package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"pulse/internal/adapters/ingest/ghevent"
)

// maxPerPage is the events API page size ceiling
const maxPerPage = 100

// PublicEvents fetches one page of a user's public events with optional etag
// notModified=true means the page matched etag and events is nil
func (c *Client) PublicEvents(ctx context.Context, login string, page, perPage int, etag string) (events []ghevent.Event, etagOut string, notModified bool, err error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}
	p := fmt.Sprintf("/users/%s/events/public?per_page=%d&page=%d", url.PathEscape(login), perPage, page)
	resp, err := c.Do(ctx, http.MethodGet, p, etag)
	if err != nil {
		return nil, "", false, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", p).Msg("github close body failed")
		}
	}()

	if resp.StatusCode == http.StatusNotModified {
		return nil, resp.Header.Get("ETag"), true, nil
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", false, err
	}
	out, err := ghevent.DecodeList(b)
	if err != nil {
		return nil, "", false, err
	}
	return out, resp.Header.Get("ETag"), false, nil
}
