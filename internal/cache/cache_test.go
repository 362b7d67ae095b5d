package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/tradewire/internal/news"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingSource returns batch N on the Nth fetch, or the configured error.
type countingSource struct {
	calls atomic.Int32
	fail  atomic.Bool
	gate  chan struct{}
}

func (s *countingSource) FetchTopHeadlines(ctx context.Context) ([]news.Headline, error) {
	n := s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return []news.Headline{{Title: "batch", URL: "https://example.com/" + string(rune('0'+n))}}, nil
}

func TestGetWithinTTLFetchesOnce(t *testing.T) {
	clock := newFakeClock()
	src := &countingSource{}
	c := New(src, time.Minute, WithClock(clock.Now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGetAfterTTLRefetches(t *testing.T) {
	clock := newFakeClock()
	src := &countingSource{}
	c := New(src, time.Minute, WithClock(clock.Now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	// now - fetchedAt >= TTL is stale, so exactly one TTL later refetches.
	clock.Advance(time.Minute)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
	assert.NotEqual(t, first[0].URL, second[0].URL)

	entry, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), entry.FetchedAt)
}

func TestGetServesStaleOnFetchError(t *testing.T) {
	clock := newFakeClock()
	src := &countingSource{}
	c := New(src, time.Minute, WithClock(clock.Now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	src.fail.Store(true)
	clock.Advance(2 * time.Minute)

	got, err := c.Get(context.Background())
	require.NoError(t, err, "stale data should hide the fetch error")
	assert.Equal(t, first, got)
	assert.Equal(t, int32(2), src.calls.Load())

	entry, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, first, entry.Items, "failed fetch must not replace the entry")
}

func TestGetPropagatesFetchErrorWithoutEntry(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	c := New(src, time.Minute)

	items, err := c.Get(context.Background())
	require.Error(t, err)
	assert.Nil(t, items)

	var fe *news.FetchError
	assert.True(t, errors.As(err, &fe), "expected FetchError, got %T", err)
}

func TestConcurrentStaleGetsCoalesce(t *testing.T) {
	src := &countingSource{gate: make(chan struct{})}
	c := New(src, time.Minute)

	const readers = 20
	var wg sync.WaitGroup
	results := make([][]news.Headline, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background())
		}(i)
	}

	// Let the first fetch start, give the others time to pile up behind it.
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}

func TestAbandonedGetDoesNotCancelSharedFetch(t *testing.T) {
	src := &countingSource{gate: make(chan struct{})}
	c := New(src, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	waiter := make(chan []news.Headline, 1)
	go func() {
		items, _ := c.Get(context.Background())
		waiter <- items
	}()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(src.gate)
	select {
	case items := <-waiter:
		assert.Len(t, items, 1, "remaining waiter should get the shared result")
	case <-time.After(time.Second):
		t.Fatal("remaining waiter never received the shared fetch")
	}
	assert.Equal(t, int32(1), src.calls.Load())

	_, ok := c.Peek()
	assert.True(t, ok, "abandoned caller must not stop the entry from being stored")
}

func TestInvalidateForcesRefetchButKeepsFallback(t *testing.T) {
	clock := newFakeClock()
	src := &countingSource{}
	c := New(src, time.Minute, WithClock(clock.Now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	c.Invalidate()
	src.fail.Store(true)

	got, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, first, got)
}

func TestInvalidateKeepsRealFetchTime(t *testing.T) {
	clock := newFakeClock()
	src := &countingSource{}
	c := New(src, time.Minute, WithClock(clock.Now))

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	fetchedAt := clock.Now()

	clock.Advance(5 * time.Second)
	c.Invalidate()
	entry, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, fetchedAt, entry.FetchedAt)

	src.fail.Store(true)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	entry, _ = c.Peek()
	assert.Equal(t, fetchedAt, entry.FetchedAt, "failed refresh must not move FetchedAt")

	// Still invalid, so the next read retries.
	src.fail.Store(false)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
	entry, _ = c.Peek()
	assert.Equal(t, clock.Now(), entry.FetchedAt)

	// Valid again: no fetch within TTL.
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestOnRefreshHook(t *testing.T) {
	var seen []news.Entry
	src := &countingSource{}
	c := New(src, time.Minute, WithOnRefresh(func(e news.Entry) { seen = append(seen, e) }))

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	_, err = c.Get(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Len(t, seen[0].Items, 1)
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New(&countingSource{}, 0)
	assert.Equal(t, DefaultTTL, c.TTL())
}

func TestPeekEmpty(t *testing.T) {
	_, ok := New(&countingSource{}, time.Minute).Peek()
	assert.False(t, ok)
}
