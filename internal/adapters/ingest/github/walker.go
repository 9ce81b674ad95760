package github

import (
	"context"
	"fmt"

	"pulse/internal/adapters/ingest/ghevent"
	"pulse/internal/core/walker"
)

// DefaultPages is how deep the events feed is read when not configured
const DefaultPages = 3

// WalkerOptions configures NewWalker
type WalkerOptions struct {
	Login   string
	Pages   int
	PerPage int
	// Cache enables conditional requests; nil fetches every page in full
	Cache FeedCache
}

// NewWalker returns a walker over login's public events feed
func NewWalker(c *Client, o WalkerOptions) walker.Walker {
	if o.Pages <= 0 {
		o.Pages = DefaultPages
	}
	if o.PerPage <= 0 || o.PerPage > maxPerPage {
		o.PerPage = maxPerPage
	}
	return ghevent.NewWalker("events", func(ctx context.Context) ([]ghevent.Event, error) {
		return c.feed(ctx, o)
	})
}

func (c *Client) feed(ctx context.Context, o WalkerOptions) ([]ghevent.Event, error) {
	var out []ghevent.Event
	for page := 1; page <= o.Pages; page++ {
		key := fmt.Sprintf("%s:%d:%d", o.Login, o.PerPage, page)

		var cached FeedEntry
		var hit bool
		if o.Cache != nil {
			cached, hit = o.Cache.Get(ctx, key)
		}
		etag := ""
		if hit {
			etag = cached.ETag
		}

		evs, tag, notModified, err := c.PublicEvents(ctx, o.Login, page, o.PerPage, etag)
		if err != nil {
			return nil, err
		}
		if notModified && hit {
			evs = cached.Events
		} else if o.Cache != nil && tag != "" {
			o.Cache.Put(ctx, key, FeedEntry{ETag: tag, Events: evs})
		}

		c.log.Debug().Str("login", o.Login).Int("page", page).Int("events", len(evs)).Bool("not_modified", notModified).Msg("events page")
		out = append(out, evs...)
		if len(evs) < o.PerPage {
			break
		}
	}
	return out, nil
}
