// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cache is the in-memory store for server data fetched over the
// API. Entries live for the current process only; nothing here survives
// a restart.
//
// Reads are stale-while-revalidate: a fresh entry is returned as is, a
// stale entry is returned immediately while a background refresh runs,
// and a miss fetches in the foreground. Concurrent fetches of the same
// key collapse into one upstream call via singleflight. Keys are
// segment paths, so invalidation can target one entry or a whole prefix
// family, and a logout drops everything at once.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cache entry as a path of segments, from coarse to
// fine: Key{"posts"}, Key{"posts", "42"}. Segments must not contain the
// 0x1f byte.
type Key []string

// id returns the flat map key for this Key.
func (k Key) id() string { return strings.Join(k, "\x1f") }

// String renders the key for logs and error messages.
func (k Key) String() string { return strings.Join(k, "/") }

// HasPrefix reports whether k starts with the given prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Fetcher loads the value for a key from upstream.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	lastErr   error
}

// Cache is a TTL'd stale-while-revalidate store. All methods are safe
// for concurrent use.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
	// gen increments on every invalidation; refreshes that started
	// under an older generation discard their store instead of
	// resurrecting dropped data.
	gen uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Tests use it to move entries
// between fresh and stale without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache whose entries stay fresh for ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key. A fresh entry is served
// directly. A stale entry is served immediately while a background
// revalidation runs; if that revalidation fails the stale value keeps
// serving. A miss fetches in the foreground and the fetch error, if
// any, is the caller's.
func (c *Cache) Fetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	id := key.id()

	c.mu.RLock()
	e, ok := c.entries[id]
	fresh := ok && c.now().Sub(e.fetchedAt) < c.ttl
	c.mu.RUnlock()

	if fresh {
		return e.value, nil
	}
	if ok {
		// Serve stale, revalidate out of band. The refresh must outlive
		// the caller's context.
		go func() {
			if _, err := c.refresh(context.WithoutCancel(ctx), key, fn); err != nil {
				slog.Debug("background revalidation failed", "key", key.String(), "err", err)
			}
		}()
		return e.value, nil
	}
	return c.refresh(ctx, key, fn)
}

// FetchFresh bypasses the freshness window and revalidates in the
// foreground. Concurrent calls still collapse into one upstream fetch.
func (c *Cache) FetchFresh(ctx context.Context, key Key, fn Fetcher) (any, error) {
	return c.refresh(ctx, key, fn)
}

// refresh runs fn once per key across all concurrent callers and
// stores the result unless an invalidation happened in between.
func (c *Cache) refresh(ctx context.Context, key Key, fn Fetcher) (any, error) {
	id := key.id()

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.group.Do(id, func() (any, error) {
		val, err := fn(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			if e, ok := c.entries[id]; ok {
				e.lastErr = err
				c.entries[id] = e
			}
			return nil, err
		}
		if c.gen == gen {
			c.entries[id] = entry{key: key, value: val, fetchedAt: c.now()}
		}
		return val, nil
	})
	return v, err
}

// Invalidate drops every entry whose key starts with prefix and
// reports how many were removed. In-flight refreshes for dropped keys
// will not re-insert them.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, id)
			removed++
		}
	}
	c.gen++
	return removed
}

// Clear drops every entry. Called when the session ends so no server
// data leaks into the next user's session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.gen++
}

// Len returns the number of entries currently held, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch is the typed wrapper around Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	return assert[T](key, v, err)
}

// FetchFresh is the typed wrapper around Cache.FetchFresh.
func FetchFresh[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.FetchFresh(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	return assert[T](key, v, err)
}

func assert[T any](key Key, v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: entry %s holds %T", key, v)
	}
	return typed, nil
}
