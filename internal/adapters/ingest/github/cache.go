package github

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pulse/internal/adapters/ingest/ghevent"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	"pulse/internal/platform/store"
)

// FeedEntry is one cached events page and the etag it was served with
type FeedEntry struct {
	ETag   string          `json:"etag"`
	Events []ghevent.Event `json:"events"`
}

// FeedCache remembers pages so conditional requests can reuse them on 304
type FeedCache interface {
	Get(ctx context.Context, key string) (FeedEntry, bool)
	Put(ctx context.Context, key string, e FeedEntry)
}

// MemoryCache is a process local FeedCache
type MemoryCache struct {
	mu sync.Mutex
	m  map[string]FeedEntry
}

// NewMemoryCache returns an empty MemoryCache
func NewMemoryCache() *MemoryCache { return &MemoryCache{m: map[string]FeedEntry{}} }

// Get implements FeedCache
func (c *MemoryCache) Get(_ context.Context, key string) (FeedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	return e, ok
}

// Put implements FeedCache
func (c *MemoryCache) Put(_ context.Context, key string, e FeedEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = e
}

// KVCache stores pages in a key value store such as redis
// failures degrade to a miss; the feed is refetched in full
type KVCache struct {
	kv  store.KV
	ttl time.Duration
	log logger.Logger
}

// NewKVCache wraps kv; ttl <= 0 keeps entries until evicted
func NewKVCache(kv store.KV, ttl time.Duration) *KVCache {
	return &KVCache{kv: kv, ttl: ttl, log: *logger.Named("github.cache")}
}

// Get implements FeedCache
func (c *KVCache) Get(ctx context.Context, key string) (FeedEntry, bool) {
	b, err := c.kv.Get(ctx, "gh:feed:"+key)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("feed cache read failed")
		}
		return FeedEntry{}, false
	}
	var e FeedEntry
	if err := json.Unmarshal(b, &e); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("feed cache entry unreadable")
		return FeedEntry{}, false
	}
	return e, true
}

// Put implements FeedCache
func (c *KVCache) Put(ctx context.Context, key string, e FeedEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, "gh:feed:"+key, b, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("feed cache write failed")
	}
}
