package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/keeper/credential"
)

// countingDirectory counts calls to the wrapped directory.
type countingDirectory struct {
	mu    sync.Mutex
	inner credential.Directory
	calls int
	err   error
}

func (c *countingDirectory) Lookup(ctx context.Context, handle string) (*credential.Entry, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.inner.Lookup(ctx, handle)
}

func (c *countingDirectory) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, opts ...Option) (*Directory, *countingDirectory, *fakeClock) {
	t.Helper()
	inner := &countingDirectory{inner: credential.Demo()}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	d := NewDirectory(inner, opts...)
	d.now = clock.now
	return d, inner, clock
}

func TestCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	d, inner, _ := newTestCache(t, WithTTL(time.Minute))

	if _, err := d.Lookup(ctx, "admin@hawkly.io"); err != nil {
		t.Fatal(err)
	}
	e, err := d.Lookup(ctx, "ADMIN@hawkly.io")
	if err != nil {
		t.Fatal(err)
	}
	if e.Principal.ContactHandle != "admin@hawkly.io" {
		t.Fatalf("unexpected entry %+v", e.Principal)
	}
	if inner.count() != 1 {
		t.Fatalf("expected 1 inner lookup, got %d", inner.count())
	}
	hits, misses := d.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d / %d", hits, misses)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	d, inner, clock := newTestCache(t, WithTTL(time.Minute))

	_, _ = d.Lookup(ctx, "admin@hawkly.io")
	clock.advance(2 * time.Minute)
	_, _ = d.Lookup(ctx, "admin@hawkly.io")

	if inner.count() != 2 {
		t.Fatalf("expected lookup after expiry, got %d inner calls", inner.count())
	}
}

func TestCacheNegativeLookups(t *testing.T) {
	ctx := context.Background()
	d, inner, clock := newTestCache(t, WithMissTTL(10*time.Second))

	for i := 0; i < 3; i++ {
		if _, err := d.Lookup(ctx, "ghost@hawkly.io"); !errors.Is(err, credential.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if inner.count() != 1 {
		t.Fatalf("expected negative result cached, got %d inner calls", inner.count())
	}

	clock.advance(11 * time.Second)
	_, _ = d.Lookup(ctx, "ghost@hawkly.io")
	if inner.count() != 2 {
		t.Fatalf("expected negative entry expired, got %d inner calls", inner.count())
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	d, inner, _ := newTestCache(t)
	inner.err = errors.New("backend down")

	for i := 0; i < 2; i++ {
		if _, err := d.Lookup(ctx, "admin@hawkly.io"); err == nil {
			t.Fatal("expected backend error")
		}
	}
	if inner.count() != 2 {
		t.Fatalf("errors must not be cached, got %d inner calls", inner.count())
	}
}

func TestCacheInvalidateAndPurge(t *testing.T) {
	ctx := context.Background()
	d, inner, _ := newTestCache(t)

	_, _ = d.Lookup(ctx, "admin@hawkly.io")
	d.Invalidate("Admin@Hawkly.io")
	_, _ = d.Lookup(ctx, "admin@hawkly.io")
	d.Purge()
	_, _ = d.Lookup(ctx, "admin@hawkly.io")

	if inner.count() != 3 {
		t.Fatalf("expected 3 inner calls, got %d", inner.count())
	}
}

func TestCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestCache(t, WithMaxSize(2))

	for _, h := range []string{"admin@hawkly.io", "auditor@hawkly.io", "guest@hawkly.io"} {
		_, _ = d.Lookup(ctx, h)
	}
	d.mu.RLock()
	n := len(d.entries)
	d.mu.RUnlock()
	if n > 2 {
		t.Fatalf("expected at most 2 entries, got %d", n)
	}
}

func TestCacheKeepsEntryRefreshedDuringExpiry(t *testing.T) {
	ctx := context.Background()
	d, inner, clock := newTestCache(t, WithTTL(time.Minute))
	const key = "admin@hawkly.io"

	if _, err := d.Lookup(ctx, key); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Minute)

	// Another lookup refreshes the key between the expiry check and the
	// eviction.
	fresh := &credential.Entry{Secret: "fresh"}
	refreshed := false
	d.now = func() time.Time {
		if !refreshed {
			refreshed = true
			d.set(key, fresh, time.Minute)
		}
		return clock.now()
	}
	inner.mu.Lock()
	inner.err = errors.New("directory down")
	inner.mu.Unlock()

	if _, err := d.Lookup(ctx, key); err == nil {
		t.Fatal("expected inner error")
	}

	d.mu.RLock()
	e, ok := d.entries[key]
	d.mu.RUnlock()
	if !ok || e.value != fresh {
		t.Fatal("refreshed entry was evicted")
	}
}
