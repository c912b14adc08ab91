// Package cache collapses concurrent identical backend calls into one
// network round-trip and memoizes results for a short, per-endpoint
// TTL. Entries are shared promises: every caller joining an in-flight
// or settled entry observes the identical value or error. Eviction is
// timer-driven, starting when the call settles, so failed calls do not
// stick around past their window either.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"askdb/pkg/telemetry"
)

// entry is one shared result. done is closed at settlement; after that
// val/err never change.
type entry struct {
	done chan struct{}
	val  any
	err  error
}

// Cache is a keyed request deduplicator with timed eviction. It is
// constructor-injected (no package singleton) so tests can isolate
// state and control time.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   Clock
}

// New returns an empty cache driven by the given clock.
func New(clock Clock) *Cache {
	if clock == nil {
		clock = RealClock()
	}
	return &Cache{entries: make(map[string]*entry), clock: clock}
}

// Key builds the canonical cache key for an endpoint kind and payload.
// The payload is serialized with object keys sorted, so deeply equal
// payloads produce equal keys regardless of field order at the caller.
// A nil payload yields the kind itself as the literal key.
func Key(kind string, payload any) string {
	if payload == nil {
		return kind
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return kind + ":" + fmt.Sprintf("%v", payload)
	}
	// round-trip through an untyped value: encoding/json writes map
	// keys in sorted order
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return kind + ":" + string(b)
	}
	canon, err := json.Marshal(v)
	if err != nil {
		return kind + ":" + string(b)
	}
	return kind + ":" + string(canon)
}

// Do returns the shared result for key. If an entry exists (in flight
// or settled within its TTL) the caller joins it; otherwise fn runs in
// the calling goroutine, the entry being registered before fn starts so
// concurrent callers join rather than duplicate the call. When fn
// settles, an eviction timer of ttl is armed regardless of outcome.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		telemetry.CacheHit()
		return e.wait(ctx)
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()
	telemetry.CacheMiss()

	e.val, e.err = fn()
	close(e.done)
	c.clock.AfterFunc(ttl, func() { c.evict(key, e) })
	return e.val, e.err
}

func (e *entry) wait(ctx context.Context) (any, error) {
	select {
	case <-e.done:
		return e.val, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// evict removes the entry only if it is still the one the timer was
// armed for; a key reused after invalidation is left alone. Deletion is
// idempotent, so a racing Invalidate is harmless.
func (c *Cache) evict(key string, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[key]; ok && cur == e {
		delete(c.entries, key)
		telemetry.CacheEviction()
	}
}

// Invalidate removes every entry whose key contains pattern, or all
// entries when pattern is empty. Used after mutations so the next read
// bypasses the cache. Returns the number of entries removed.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if pattern == "" || strings.Contains(k, pattern) {
			delete(c.entries, k)
			n++
			telemetry.CacheEviction()
		}
	}
	return n
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
