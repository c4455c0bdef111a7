package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ivlev/lyric2video/internal/director"
)

// SceneKey is the content hash of the sanitized scene
func SceneKey(scene director.Scene) string {
	data, err := json.Marshal(director.Sanitize(scene))
	if err != nil {
		// Sanitized scenes only hold finite numbers, strings and slices.
		panic(fmt.Sprintf("scene key: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cacheKey(scene director.Scene, opts Options) string {
	opts = opts.withDefaults()
	return fmt.Sprintf("%s@%dx%d/%s", SceneKey(scene), opts.Width, opts.Height, opts.Detector)
}

// BakeFunc produces a timeline; Bake is the default
type BakeFunc func(ctx context.Context, scene director.Scene, opts Options) (*Timeline, error)

type entry struct {
	tl   *Timeline
	refs int
}

// flight fans progress of one in-flight bake out to every waiter
type flight struct {
	mu        sync.Mutex
	listeners []func(int)
	last      int
	waiters   int
}

func (f *flight) join(fn func(int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		return
	}
	f.listeners = append(f.listeners, fn)
	if f.last > 0 {
		fn(f.last)
	}
}

func (f *flight) wait() {
	f.mu.Lock()
	f.waiters++
	f.mu.Unlock()
}

func (f *flight) report(p int) {
	f.mu.Lock()
	f.last = p
	listeners := append([]func(int){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(p)
	}
}

// Cache coalesces bakes of the same scene and keeps finished timelines.
// Failed bakes are reported to every waiter and not retained.
type Cache struct {
	bake BakeFunc

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*entry
	flights map[string]*flight
}

// NewCache creates a cache that bakes with Bake
func NewCache() *Cache {
	return NewCacheWith(Bake)
}

// NewCacheWith creates a cache around a custom bake function
func NewCacheWith(bake BakeFunc) *Cache {
	return &Cache{
		bake:    bake,
		entries: make(map[string]*entry),
		flights: make(map[string]*flight),
	}
}

// Handle is one consumer's reference to a cached timeline
type Handle struct {
	key  string
	tl   *Timeline
	c    *Cache
	once sync.Once
}

// Key returns the cache key the handle refers to
func (h *Handle) Key() string { return h.key }

// Timeline returns the shared timeline. Callers must not modify it.
func (h *Handle) Timeline() *Timeline { return h.tl }

// Release drops this handle's reference. The timeline stays cached for
// other consumers; only Evict removes it.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.c.mu.Lock()
		defer h.c.mu.Unlock()
		if e, ok := h.c.entries[h.key]; ok && e.tl == h.tl && e.refs > 0 {
			e.refs--
		}
	})
}

// Acquire returns a handle to the timeline for scene, baking it if needed.
// Concurrent calls for the same scene share one bake. Cancelling ctx only
// stops this caller from waiting; the bake keeps running for the others.
func (c *Cache) Acquire(ctx context.Context, scene director.Scene, opts Options) (*Handle, error) {
	key := cacheKey(scene, opts)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.refs++
		c.mu.Unlock()
		if opts.Progress != nil {
			opts.Progress(100)
		}
		return &Handle{key: key, tl: e.tl, c: c}, nil
	}
	f, ok := c.flights[key]
	if !ok {
		f = &flight{}
		c.flights[key] = f
	}
	c.mu.Unlock()
	f.join(opts.Progress)

	bakeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return e.tl, nil
		}
		c.mu.Unlock()

		o := opts
		o.Progress = f.report
		tl, err := c.bake(bakeCtx, scene, o)

		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.flights, key)
		if err != nil {
			return nil, err
		}
		c.entries[key] = &entry{tl: tl}
		return tl, nil
	})
	f.wait()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("bake: %w", res.Err)
		}
		tl := res.Val.(*Timeline)
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && e.tl == tl {
			e.refs++
		}
		c.mu.Unlock()
		return &Handle{key: key, tl: tl, c: c}, nil
	}
}

// Refs returns the live handle count for key
func (c *Cache) Refs(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached timelines
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evict drops a cached timeline. Outstanding handles keep their pointer.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) waiting(key string) int {
	c.mu.Lock()
	f, ok := c.flights[key]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waiters
}
