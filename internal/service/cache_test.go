package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview/internal/domain"
)

func testTuning() domain.CacheTuning {
	return domain.CacheTuning{
		ShortWindow:   50 * time.Millisecond,
		MediumWindow:  100 * time.Millisecond,
		LongWindow:    time.Minute,
		RetryAttempts: 3,
		RetryBase:     time.Millisecond,
		RetryMax:      2 * time.Millisecond,
	}
}

func TestFetchCoalescesConcurrentReads(t *testing.T) {
	cache := NewQueryCache(testTuning())

	var calls int64
	entered := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&calls, 1)
		close(entered)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = cache.Fetch(context.Background(), "k", domain.CategoryLong, fn)
	}()
	<-entered

	// Second reader arrives while the first fetch is in flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = cache.Fetch(context.Background(), "k", domain.CategoryLong, fn)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("reader %d: %v", i, errs[i])
		}
		if results[i] != "value" {
			t.Fatalf("reader %d got %v", i, results[i])
		}
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("upstream called %d times, want 1", n)
	}
}

func TestFetchRetriesTransientExactly(t *testing.T) {
	cache := NewQueryCache(testTuning())

	var calls int64
	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&calls, 1)
		return nil, domain.TransientError{Op: "rpc", Err: errors.New("connection refused")}
	}

	_, err := cache.Fetch(context.Background(), "k", domain.CategoryShort, fn)
	if err == nil {
		t.Fatalf("expected error after retry exhaustion")
	}
	if n := atomic.LoadInt64(&calls); n != 3 {
		t.Fatalf("upstream called %d times, want exactly 3", n)
	}

	state, lastErr := cache.State("k")
	if state != domain.EntryError {
		t.Fatalf("state %v, want Error", state)
	}
	if lastErr == nil {
		t.Fatalf("error state must carry the failure")
	}
}

func TestFetchDoesNotRetryPermanent(t *testing.T) {
	cache := NewQueryCache(testTuning())

	var calls int64
	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&calls, 1)
		return nil, domain.NotFoundError{Resource: "paper 42"}
	}

	_, err := cache.Fetch(context.Background(), "k", domain.CategoryShort, fn)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("upstream called %d times, want 1 (absence is permanent)", n)
	}
}

func TestFetchServesStaleWhileRevalidating(t *testing.T) {
	cache := NewQueryCache(testTuning())

	base := time.Now()
	current := base
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	var calls int64
	fn := func(ctx context.Context) (any, error) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	v, err := cache.Fetch(context.Background(), "k", domain.CategoryShort, fn)
	if err != nil || v != "v1" {
		t.Fatalf("initial fetch: %v, %v", v, err)
	}

	// Cross the staleness window.
	mu.Lock()
	current = base.Add(time.Second)
	mu.Unlock()

	v, err = cache.Fetch(context.Background(), "k", domain.CategoryShort, fn)
	if err != nil {
		t.Fatalf("stale fetch: %v", err)
	}
	if v != "v1" {
		t.Fatalf("stale read returned %v, want the old value served immediately", v)
	}

	// The background refresh lands; subsequent reads see the new value.
	deadline := time.Now().Add(2 * time.Second)
	for {
		v, err = cache.Fetch(context.Background(), "k", domain.CategoryShort, fn)
		if err != nil {
			t.Fatalf("refetch: %v", err)
		}
		if v == "v2" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background refresh never landed, still %v", v)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := atomic.LoadInt64(&calls); n != 2 {
		t.Fatalf("upstream called %d times, want 2 (one refresh, no duplicates)", n)
	}
}

func TestInvalidateServesOldValueUntilRefresh(t *testing.T) {
	cache := NewQueryCache(testTuning())

	var calls int64
	fn := func(ctx context.Context) (any, error) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	if _, err := cache.Fetch(context.Background(), "k", domain.CategoryLong, fn); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	cache.Invalidate("k")

	// The old value stays up, never a flash to empty.
	v, err := cache.Fetch(context.Background(), "k", domain.CategoryLong, fn)
	if err != nil {
		t.Fatalf("post-invalidate fetch: %v", err)
	}
	if v != "v1" {
		t.Fatalf("post-invalidate read returned %v, want old value", v)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v, err = cache.Fetch(context.Background(), "k", domain.CategoryLong, fn)
		if err != nil {
			t.Fatalf("refetch: %v", err)
		}
		if v == "v2" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("forced refresh never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidateDuringRefreshStaysPending(t *testing.T) {
	cache := NewQueryCache(testTuning())

	var calls int64
	entered := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		n := atomic.AddInt64(&calls, 1)
		if n == 2 {
			close(entered)
			<-release
		}
		return fmt.Sprintf("v%d", n), nil
	}

	if _, err := cache.Fetch(context.Background(), "k", domain.CategoryLong, fn); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	cache.Invalidate("k")

	// Serves v1 and kicks off the forced refresh, which blocks inside fn.
	if v, err := cache.Fetch(context.Background(), "k", domain.CategoryLong, fn); err != nil || v != "v1" {
		t.Fatalf("post-invalidate fetch: %v, %v", v, err)
	}
	<-entered

	// A second invalidation lands while the refresh is in flight. The data
	// that refresh produces predates it, so the key must stay dirty.
	cache.Invalidate("k")
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		cache.mu.Lock()
		settled := !cache.entries["k"].refreshing && cache.entries["k"].state == domain.EntryFresh
		cache.mu.Unlock()
		if settled {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("refresh never settled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cache.mu.Lock()
	forced := cache.entries["k"].forced
	cache.mu.Unlock()
	if !forced {
		t.Fatalf("invalidation racing an in-flight refresh was lost")
	}
}

func TestInvalidatePrefixMarksFamily(t *testing.T) {
	cache := NewQueryCache(testTuning())

	fn := func(ctx context.Context) (any, error) { return "v", nil }
	for _, key := range []string{"papers:0:12", "papers:12:12", "proposal:1"} {
		if _, err := cache.Fetch(context.Background(), key, domain.CategoryLong, fn); err != nil {
			t.Fatalf("fetch %s: %v", key, err)
		}
	}

	cache.InvalidatePrefix("papers:")

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if !cache.entries["papers:0:12"].forced || !cache.entries["papers:12:12"].forced {
		t.Fatalf("paper pages not invalidated")
	}
	if cache.entries["proposal:1"].forced {
		t.Fatalf("unrelated key invalidated")
	}
}

func TestStateMachine(t *testing.T) {
	cache := NewQueryCache(testTuning())

	if state, _ := cache.State("k"); state != domain.EntryEmpty {
		t.Fatalf("state %v, want Empty before first fetch", state)
	}

	base := time.Now()
	current := base
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	fn := func(ctx context.Context) (any, error) { return "v", nil }
	if _, err := cache.Fetch(context.Background(), "k", domain.CategoryShort, fn); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if state, _ := cache.State("k"); state != domain.EntryFresh {
		t.Fatalf("state %v, want Fresh after fetch", state)
	}

	mu.Lock()
	current = base.Add(time.Second)
	mu.Unlock()
	if state, _ := cache.State("k"); state != domain.EntryStale {
		t.Fatalf("state %v, want Stale past the window", state)
	}
}

func TestStateRespectsCategoryWindow(t *testing.T) {
	cache := NewQueryCache(testTuning())

	base := time.Now()
	current := base
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	fn := func(ctx context.Context) (any, error) { return "v", nil }
	if _, err := cache.Fetch(context.Background(), "k", domain.CategoryLong, fn); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// Past the short window but well within the long one the key was
	// fetched under.
	mu.Lock()
	current = base.Add(time.Second)
	mu.Unlock()
	if state, _ := cache.State("k"); state != domain.EntryFresh {
		t.Fatalf("state %v, want Fresh inside the long window", state)
	}

	mu.Lock()
	current = base.Add(2 * time.Minute)
	mu.Unlock()
	if state, _ := cache.State("k"); state != domain.EntryStale {
		t.Fatalf("state %v, want Stale past the long window", state)
	}
}

func TestFetchAsTyped(t *testing.T) {
	cache := NewQueryCache(testTuning())

	got, err := FetchAs(context.Background(), cache, "k", domain.CategoryShort, func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("FetchAs: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected value %v", got)
	}
}
