package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/openscholar/paperview/internal/domain"
)

var tracer = otel.Tracer("service")

// Values are kept well past their staleness window so stale-while-
// revalidate always has something to serve; go-cache only evicts keys
// nobody has refreshed in a long time.
const (
	retentionTTL    = time.Hour
	cleanupInterval = 2 * time.Hour
	refreshBudget   = time.Minute
)

// FetchFunc loads the value for one query key from upstream.
type FetchFunc func(ctx context.Context) (any, error)

// entry is the orchestrator's bookkeeping for one query key. The value
// itself lives in the go-cache store; entry tracks freshness and the
// state machine Empty -> Fetching -> Fresh -> Stale -> Fresh | Error.
type entry struct {
	fetchedAt  time.Time
	window     time.Duration // staleness window of the category the key is read under
	state      domain.EntryState
	lastErr    error
	forced     bool   // invalidated: bypass the freshness check on next read
	gen        uint64 // bumped on every invalidation, so one racing an in-flight fetch survives it
	refreshing bool
}

// QueryCache is the request cache / retry orchestrator. Every upstream
// read goes through Fetch: fresh values are served without I/O, stale
// values are served immediately while one background refresh runs, and
// concurrent requests for the same key coalesce into a single in-flight
// call. Failed fetches retry with bounded exponential backoff before the
// key enters an explicit Error state.
type QueryCache struct {
	tuning domain.CacheTuning
	store  *gocache.Cache
	flight flightGroup

	mu      sync.Mutex
	entries map[string]*entry

	// now is swappable for tests.
	now func() time.Time
}

// flightGroup is the subset of singleflight used by the cache.
type flightGroup interface {
	Do(key string, fn func() (any, error)) (any, error)
}

// NewQueryCache constructs the orchestrator.
func NewQueryCache(tuning domain.CacheTuning) *QueryCache {
	return &QueryCache{
		tuning:  tuning,
		store:   gocache.New(retentionTTL, cleanupInterval),
		flight:  newSingleflight(),
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Fetch returns the value for key, loading it via fn when needed.
// category selects the staleness window.
func (c *QueryCache) Fetch(ctx context.Context, key string, category domain.QueryCategory, fn FetchFunc) (any, error) {
	ctx, span := tracer.Start(ctx, "Cache.Fetch")
	defer span.End()

	window := c.tuning.Window(category)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{state: domain.EntryEmpty}
		c.entries[key] = e
	}
	e.window = window
	value, hasValue := c.store.Get(key)
	fresh := hasValue && !e.forced && c.now().Sub(e.fetchedAt) < window
	c.mu.Unlock()

	if fresh {
		return value, nil
	}

	if hasValue {
		// Stale (or force-invalidated): serve the old value immediately and
		// revalidate in the background. The UI never blocks and never
		// flashes to empty.
		c.refreshAsync(key, fn)
		return value, nil
	}

	// Empty or errored: the caller has nothing to render, so block on one
	// coalesced fetch.
	c.setState(key, domain.EntryFetching)
	result, err := c.flight.Do(key, func() (any, error) {
		return c.fetchWithRetry(ctx, key, fn)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// refreshAsync triggers at most one background revalidation for key.
// The refresh runs detached from the caller's context: a navigating-away
// user abandons the wait, not the useful work.
func (c *QueryCache) refreshAsync(key string, fn FetchFunc) {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.refreshing {
		c.mu.Unlock()
		return
	}
	e.refreshing = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			if e := c.entries[key]; e != nil {
				e.refreshing = false
			}
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), refreshBudget)
		defer cancel()

		_, err := c.flight.Do(key, func() (any, error) {
			return c.fetchWithRetry(ctx, key, fn)
		})
		if err != nil {
			slog.Warn("background refresh failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}()
}

// fetchWithRetry runs fn with bounded exponential backoff. Only transient
// failures retry; absences and domain errors are permanent. On success
// the value is stored and the key becomes Fresh; on exhaustion the key
// enters the Error state.
func (c *QueryCache) fetchWithRetry(ctx context.Context, key string, fn FetchFunc) (any, error) {

	c.mu.Lock()
	var startGen uint64
	if e := c.entries[key]; e != nil {
		startGen = e.gen
	}
	c.mu.Unlock()

	var value any
	op := func() error {
		v, err := fn(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrTransient) {
				return err
			}
			return backoff.Permanent(err)
		}
		value = v
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.tuning.RetryBase
	bo.MaxInterval = c.tuning.RetryMax
	bo.MaxElapsedTime = 0

	attempts := c.tuning.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx))
	if err != nil {
		c.mu.Lock()
		if e := c.entries[key]; e != nil {
			e.state = domain.EntryError
			e.lastErr = err
		}
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.store.Set(key, value, retentionTTL)
	if e := c.entries[key]; e != nil {
		e.fetchedAt = c.now()
		e.state = domain.EntryFresh
		e.lastErr = nil
		// An invalidation that arrived while this fetch was in flight may
		// postdate the data it produced; keep it pending.
		if e.gen == startGen {
			e.forced = false
		}
	}
	c.mu.Unlock()

	return value, nil
}

// Invalidate marks a key so its next read bypasses the freshness check
// and refetches, while the previous value keeps being served until the
// new fetch resolves. Only transaction-confirmation handlers call this;
// readers never invalidate.
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.forced = true
		e.gen++
	}
}

// InvalidatePrefix invalidates every key of a family, e.g. all "papers:"
// pages after a mint confirms.
func (c *QueryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			e.forced = true
			e.gen++
		}
	}
}

// State reports the state machine position of a key.
func (c *QueryCache) State(key string) (domain.EntryState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return domain.EntryEmpty, nil
	}
	if e.state == domain.EntryError {
		return e.state, e.lastErr
	}
	// Staleness is judged against the window of the category the key was
	// last read under.
	window := e.window
	if window <= 0 {
		window = c.tuning.ShortWindow
	}
	if _, has := c.store.Get(key); has && c.now().Sub(e.fetchedAt) >= window {
		return domain.EntryStale, nil
	}
	return e.state, nil
}

func (c *QueryCache) setState(key string, s domain.EntryState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.state != domain.EntryError {
		e.state = s
	}
}

// FetchAs is the typed convenience wrapper over QueryCache.Fetch.
func FetchAs[T any](ctx context.Context, c *QueryCache, key string, category domain.QueryCategory, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, category, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("cache value for %s has unexpected type %T", key, v)
	}
	return typed, nil
}
