package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

const defaultMaxEntries = 100000

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
	MaxEntries int // least recently used entries are evicted past this
}

type entry struct {
	data     string
	expireAt time.Time // zero means no expiry
}

func (e entry) expiredAt(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// LocalCache is a bounded in-process KV cache. Entries carry their own TTL;
// expired ones are dropped on read and by a periodic sweep.
type LocalCache struct {
	kv         *lru.Cache[string, entry]
	gcInterval time.Duration
	now        func() time.Time
	stopGC     chan struct{}
	closeOnce  sync.Once
}

// NewCache creates a LocalCache and starts the background sweep.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	size := cfg.MaxEntries
	if size <= 0 {
		size = defaultMaxEntries
	}
	kv, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("local cache: %w", err)
	}
	c := &LocalCache{
		kv:         kv,
		gcInterval: interval,
		now:        time.Now,
		stopGC:     make(chan struct{}),
	}
	go c.runGC()
	return c, nil
}

// Close stops the background sweep.
func (c *LocalCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopGC) })
	return nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (c *LocalCache) Len() int { return c.kv.Len() }

func (c *LocalCache) runGC() {
	ticker := time.NewTicker(c.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopGC:
			return
		}
	}
}

// sweep removes expired entries without touching recency.
func (c *LocalCache) sweep() int {
	now := c.now()
	removed := 0
	for _, k := range c.kv.Keys() {
		if e, ok := c.kv.Peek(k); ok && e.expiredAt(now) {
			c.kv.Remove(k)
			removed++
		}
	}
	return removed
}

func (c *LocalCache) load(key string) (entry, bool) {
	e, ok := c.kv.Get(key)
	if !ok {
		return entry{}, false
	}
	if e.expiredAt(c.now()) {
		c.kv.Remove(key)
		return entry{}, false
	}
	return e, true
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	e, ok := c.load(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.data, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{data: value}
	if ttl > 0 {
		e.expireAt = c.now().Add(ttl)
	}
	c.kv.Add(key, e)
	return nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.kv.Remove(k)
	}
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.load(key)
	return ok, nil
}
