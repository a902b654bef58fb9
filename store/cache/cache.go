// Package cache implements the in-process read-through cache the Educanexo360
// services share to avoid recomputing expensive aggregates (dashboard stats,
// academic averages, recipient directories).
//
// The cache is a single-process, best-effort layer: entries expire after a
// per-type TTL, capacity is capped with oldest-insertion eviction, and writes
// to the underlying data invalidate whole (type, user, school) scopes by key
// prefix rather than tracking per-row dependencies. It deliberately offers no
// cross-process coherency and no persistence; every process starts empty.
//
// A failing cache must never be worse than no cache: computation errors
// propagate to the caller untouched and are never memoized, while internal
// cache trouble degrades to a plain recomputation.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the value for a cache miss. It usually wraps a
// database aggregation and is the only cache operation that may block on IO.
type ComputeFunc func(ctx context.Context) (any, error)

// Cache is the shared handle services use for read-through caching and
// invalidation. Construct it with New and release it with Close; there is no
// package-level instance, so tests and multi-tenant setups can run several
// independent caches side by side.
type Cache struct {
	store    *Store
	policies *policyTable
	coalesce bool
	instance string

	group singleflight.Group

	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	sweepInterval time.Duration
}

// New creates a cache handle from cfg and starts its background sweep.
// Zero config fields fall back to package defaults. The only rejected
// configuration is a type name that could not appear in a key.
func New(cfg Config) (*Cache, error) {
	for name := range cfg.Types {
		if _, err := BuildKey(name); err != nil {
			return nil, err
		}
	}

	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}

	store := NewStore(cfg.MaxEntries)
	if cfg.now != nil {
		store.now = cfg.now
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		store:         store,
		policies:      newPolicyTable(cfg),
		coalesce:      !cfg.DisableCoalescing,
		instance:      shortuuid.New(),
		ctx:           ctx,
		cancel:        cancel,
		sweepInterval: sweep,
	}

	c.wg.Add(1)
	go c.sweepLoop()

	slog.Info("cache ready",
		"instance", c.instance,
		"max_entries", store.capacity,
		"sweep_interval", sweep,
		"coalesce", c.coalesce)
	return c, nil
}

// Close stops the sweep loop. It does not flush entries; the process is
// going away anyway.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

// InstanceID identifies this handle in logs and reports. A new ID on every
// start makes process restarts visible to whoever watches the admin stats.
func (c *Cache) InstanceID() string {
	return c.instance
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result under the TTL configured for typeName, and returns it. A failed
// computation is returned verbatim and never cached, so the next call
// computes again.
//
// Concurrent misses for the same key normally share one in-flight
// computation. With coalescing disabled each caller computes independently;
// both read the same underlying data, so whichever write lands last is as
// valid as the other. Cancellation is the compute function's business: the
// cache imposes no timeout of its own.
func (c *Cache) GetOrCompute(ctx context.Context, key, typeName string, compute ComputeFunc) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	if !c.coalesce {
		return c.computeAndStore(ctx, key, typeName, compute)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.computeAndStore(ctx, key, typeName, compute)
	})
	return v, err
}

func (c *Cache) computeAndStore(ctx context.Context, key, typeName string, compute ComputeFunc) (any, error) {
	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, v, c.policies.ttlFor(typeName))
	return v, nil
}

// Fetch is the typed convenience wrapper over GetOrCompute. A cached value
// of an unexpected type is treated as a miss and recomputed directly rather
// than failing the request; that only happens when two call sites disagree
// about a key, which the log line makes visible.
func Fetch[T any](ctx context.Context, c *Cache, key, typeName string, compute func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrCompute(ctx, key, typeName, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		slog.Warn("cached value has unexpected type, recomputing",
			"key", key,
			"type", typeName,
			"instance", c.instance)
		c.store.Delete(key)
		return compute(ctx)
	}
	return typed, nil
}

// sweepLoop periodically discards expired entries so memory stays bounded
// even when nothing reads the affected keys. It takes the same lock as every
// other mutation, so it can never race an in-flight Set.
func (c *Cache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if n := c.store.CleanupExpired(); n > 0 {
				slog.Debug("cache sweep removed expired entries",
					"count", n,
					"instance", c.instance)
			}
		}
	}
}
