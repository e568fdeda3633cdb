// Package cache provides an in-memory tabula.Cache and the codec used to
// store query results in any tabula.Cache.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/tabula"
)

// Defaults used when New receives non-positive values.
const (
	DefaultSize = 1024
	DefaultTTL  = time.Minute
)

type entry struct {
	value   []byte
	expires time.Time // zero when the store TTL applies
}

// LRU is a size-bounded, expiring in-memory cache.
type LRU struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

// New returns an LRU holding at most size entries, each for at most ttl.
func New(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU{
		lru: expirable.NewLRU[string, entry](size, nil, ttl),
		now: time.Now,
	}
}

// Get returns the cached value, or nil when the key is absent or expired.
func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.lru.Remove(key)
		return nil, nil
	}
	return e.value, nil
}

// Set stores value. A positive ttl shorter than the store TTL expires the
// entry earlier; zero uses the store TTL.
func (c *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes key.
func (c *LRU) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *LRU) DeletePrefix(_ context.Context, prefix string) error {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}

// Clear removes every entry.
func (c *LRU) Clear(context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of cached entries, including expired ones not yet evicted.
func (c *LRU) Len() int {
	return c.lru.Len()
}

var _ tabula.Cache = (*LRU)(nil)

// Marshal encodes a query result for storage in a tabula.Cache.
func Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes a query result produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
