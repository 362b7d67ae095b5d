package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/metrics"
	"github.com/matheuskafuri/tradewire/internal/news"
)

// DefaultTTL is how long a fetch result is served before it goes stale.
const DefaultTTL = 60 * time.Second

const flightKey = "headlines"

// RefreshCache holds the most recent fetch result for a fixed TTL. Stale
// reads that arrive together share one fetch.
type RefreshCache struct {
	source    news.Source
	ttl       time.Duration
	now       func() time.Time
	log       *logger.Logger
	onRefresh func(news.Entry)

	flight singleflight.Group

	mu    sync.RWMutex
	entry *news.Entry
	// invalid forces the next Get to fetch regardless of age.
	invalid bool
}

type Option func(*RefreshCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *RefreshCache) { c.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *RefreshCache) { c.log = l }
}

// WithOnRefresh registers a hook called after each successful fetch, while
// no lock is held.
func WithOnRefresh(fn func(news.Entry)) Option {
	return func(c *RefreshCache) { c.onRefresh = fn }
}

func New(source news.Source, ttl time.Duration, opts ...Option) *RefreshCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RefreshCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		log:    logger.Get().With("component", "cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *RefreshCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached headlines, fetching first if the entry is missing
// or at least TTL old. A failed fetch falls back to the previous entry when
// there is one. Cancelling ctx abandons the wait but not the shared fetch.
func (c *RefreshCache) Get(ctx context.Context) ([]news.Headline, error) {
	if items, ok := c.fresh(); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return items, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(flightKey, func() (interface{}, error) {
		return c.refresh(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]news.Headline), nil
		}
		if stale, ok := c.Peek(); ok {
			metrics.CacheLookups.WithLabelValues("stale").Inc()
			c.log.Warnw("refresh failed, serving stale headlines",
				"error", res.Err,
				"age", c.now().Sub(stale.FetchedAt).Round(time.Second),
				"items", len(stale.Items),
			)
			return stale.Items, nil
		}
		return nil, res.Err
	}
}

// Peek returns the current entry without fetching, fresh or not.
func (c *RefreshCache) Peek() (news.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return news.Entry{}, false
	}
	return *c.entry, true
}

// Invalidate marks the current entry stale so the next Get fetches. The
// entry and its FetchedAt are kept as a fallback.
func (c *RefreshCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = true
}

func (c *RefreshCache) fresh() ([]news.Headline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || c.invalid || c.now().Sub(c.entry.FetchedAt) >= c.ttl {
		return nil, false
	}
	return c.entry.Items, true
}

func (c *RefreshCache) refresh(ctx context.Context) ([]news.Headline, error) {
	// A flight that finished just before this one started may already have
	// refreshed the entry.
	if items, ok := c.fresh(); ok {
		return items, nil
	}

	start := c.now()
	items, err := c.source.FetchTopHeadlines(ctx)
	if err != nil {
		metrics.Fetches.WithLabelValues("error").Inc()
		return nil, news.AsFetchError("", err)
	}
	metrics.Fetches.WithLabelValues("success").Inc()

	entry := news.Entry{Items: items, FetchedAt: c.now()}
	c.mu.Lock()
	c.entry = &entry
	c.invalid = false
	c.mu.Unlock()

	metrics.LastRefresh.Set(float64(entry.FetchedAt.Unix()))
	c.log.Debugw("headlines refreshed", "items", len(items), "took", entry.FetchedAt.Sub(start))

	if c.onRefresh != nil {
		c.onRefresh(entry)
	}
	return items, nil
}
