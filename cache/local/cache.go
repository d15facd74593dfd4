package local

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for missing or expired keys.
var ErrNotFound = errors.New("cache: key not found")

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
}

type value struct {
	data     string
	expireAt time.Time // zero means no expiry
}

func (v value) live(now time.Time) bool {
	return v.expireAt.IsZero() || now.Before(v.expireAt)
}

// LocalCache is an in-process Cache for single-node deployments and tests.
type LocalCache struct {
	mu     sync.RWMutex
	kv     map[string]value
	hashes map[string]map[string]string

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache creates a LocalCache and starts sweeping expired keys every
// GCInterval (30s by default).
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &LocalCache{
		kv:     make(map[string]value),
		hashes: make(map[string]map[string]string),
		stop:   make(chan struct{}),
	}
	go c.sweep(interval)
	return c, nil
}

// Close stops the sweeper. It may be called more than once.
func (c *LocalCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *LocalCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			c.mu.Lock()
			for k, v := range c.kv {
				if !v.live(now) {
					delete(c.kv, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	v, ok := c.kv[key]
	c.mu.RUnlock()
	if !ok || !v.live(time.Now()) {
		return "", ErrNotFound
	}
	return v.data, nil
}

func (c *LocalCache) Set(_ context.Context, key, data string, ttl time.Duration) error {
	v := value{data: data}
	if ttl > 0 {
		v.expireAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.kv[key] = v
	c.mu.Unlock()
	return nil
}

// Del removes plain keys and hashes alike.
func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.kv, k)
		delete(c.hashes, k)
	}
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.kv[key]; ok && v.live(time.Now()) {
		return true, nil
	}
	return len(c.hashes[key]) > 0, nil
}

func (c *LocalCache) HSet(_ context.Context, key, field, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	h[field] = data
	return nil
}

func (c *LocalCache) HGet(_ context.Context, key, field string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.hashes[key][field]
	if !ok {
		return "", ErrNotFound
	}
	return data, nil
}

// HGetAll returns a copy of the hash; a missing key yields an empty map.
func (c *LocalCache) HGetAll(_ context.Context, key string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.hashes[key]))
	for f, v := range c.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (c *LocalCache) HDel(_ context.Context, key string, fields ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.hashes[key]
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(c.hashes, key)
	}
	return nil
}
