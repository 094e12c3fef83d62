// Package cache provides a TTL cache in front of a credential directory, so
// a remote identity backend is not queried on every login attempt.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/principal"
)

// Compile-time interface check.
var _ credential.Directory = (*Directory)(nil)

// Directory caches lookups of an inner directory, including misses.
// Infrastructure errors are never cached.
type Directory struct {
	inner credential.Directory

	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	missTTL time.Duration
	maxSize int
	now     func() time.Time

	statsMu sync.Mutex
	hits    uint64
	misses  uint64
}

type entry struct {
	value     *credential.Entry // nil records a negative lookup
	expiresAt time.Time
}

// Option configures the cache.
type Option func(*Directory)

// WithTTL sets how long a found entry is served from cache.
func WithTTL(ttl time.Duration) Option {
	return func(d *Directory) { d.ttl = ttl }
}

// WithMissTTL sets how long an unknown handle is remembered. Zero disables
// negative caching.
func WithMissTTL(ttl time.Duration) Option {
	return func(d *Directory) { d.missTTL = ttl }
}

// WithMaxSize sets the maximum number of cached handles.
func WithMaxSize(n int) Option {
	return func(d *Directory) { d.maxSize = n }
}

// NewDirectory wraps inner with a cache.
func NewDirectory(inner credential.Directory, opts ...Option) *Directory {
	d := &Directory{
		inner:   inner,
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		missTTL: 30 * time.Second,
		maxSize: 10000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup serves handle from cache or the inner directory.
func (d *Directory) Lookup(ctx context.Context, handle string) (*credential.Entry, error) {
	key := principal.NormalizeHandle(handle)

	d.mu.RLock()
	e, ok := d.entries[key]
	d.mu.RUnlock()
	if ok {
		if d.now().Before(e.expiresAt) {
			d.record(true)
			if e.value == nil {
				return nil, credential.ErrNotFound
			}
			return e.value.Clone(), nil
		}
		d.mu.Lock()
		// A concurrent miss may have refreshed the key since RUnlock.
		if cur, ok := d.entries[key]; ok && !d.now().Before(cur.expiresAt) {
			delete(d.entries, key)
		}
		d.mu.Unlock()
	}
	d.record(false)

	found, err := d.inner.Lookup(ctx, handle)
	switch {
	case errors.Is(err, credential.ErrNotFound):
		if d.missTTL > 0 {
			d.set(key, nil, d.missTTL)
		}
		return nil, err
	case err != nil:
		return nil, err
	}
	d.set(key, found.Clone(), d.ttl)
	return found, nil
}

// Invalidate drops handle from the cache.
func (d *Directory) Invalidate(handle string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, principal.NormalizeHandle(handle))
}

// Purge drops every cached entry.
func (d *Directory) Purge() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string]*entry)
}

// Stats returns cumulative hit and miss counts.
func (d *Directory) Stats() (hits, misses uint64) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.hits, d.misses
}

func (d *Directory) record(hit bool) {
	d.statsMu.Lock()
	if hit {
		d.hits++
	} else {
		d.misses++
	}
	d.statsMu.Unlock()
}

func (d *Directory) set(key string, value *credential.Entry, ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.entries) >= d.maxSize {
		d.evictExpired()
		if len(d.entries) >= d.maxSize {
			d.evictOne()
		}
	}
	d.entries[key] = &entry{value: value, expiresAt: d.now().Add(ttl)}
}

// evictExpired removes all expired entries. Must hold write lock.
func (d *Directory) evictExpired() {
	now := d.now()
	for k, e := range d.entries {
		if !now.Before(e.expiresAt) {
			delete(d.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (d *Directory) evictOne() {
	for k := range d.entries {
		delete(d.entries, k)
		return
	}
}
