package cache

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beacon-tools/beacon/internal/generator/emit"
)

// Result is the outcome of emitting one group, cached or fresh.
type Result struct {
	GroupKey string
	Filename string
	Source   string
	Hash     string
	Cached   bool
	Err      error
}

// Coordinator runs emission over a store, skipping groups whose structural
// hash is unchanged.
type Coordinator struct {
	store *Store
	cfg   emit.Config

	mu      sync.Mutex
	metrics *Metrics
}

// NewCoordinator wraps a store. The emit config participates in the cache
// fingerprint upstream, so entries never leak across config changes.
func NewCoordinator(store *Store, cfg emit.Config) *Coordinator {
	return &Coordinator{store: store, cfg: cfg, metrics: NewMetrics()}
}

// Store exposes the underlying store for persistence.
func (c *Coordinator) Store() *Store { return c.store }

// EmitGroups synthesizes source for each group, reusing cached output where
// the group hash matches. Groups are independent, so misses emit in
// parallel. Results keep input order.
func (c *Coordinator) EmitGroups(ctx context.Context, groups []emit.Group) ([]*Result, *Metrics, error) {
	c.mu.Lock()
	c.metrics = NewMetrics()
	c.metrics.TotalGroups = len(groups)
	metrics := c.metrics
	c.mu.Unlock()

	results := make([]*Result, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, group := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.emitGroup(group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, metrics, err
	}

	metrics.Finish()
	return results, metrics, nil
}

func (c *Coordinator) emitGroup(group emit.Group) *Result {
	key := group.Owner.GroupKey()
	hash := group.Hash()

	if entry, ok := c.store.Get(key, hash); ok {
		c.mu.Lock()
		c.metrics.CacheHits++
		c.mu.Unlock()
		return &Result{
			GroupKey: key,
			Filename: entry.Filename,
			Source:   entry.Source,
			Hash:     hash,
			Cached:   true,
		}
	}

	start := time.Now()
	// Generators hold buffer state, so each miss gets its own.
	source, err := emit.NewGenerator(c.cfg).GenerateFile(group)
	filename := emit.Filename(group.Owner)

	c.mu.Lock()
	c.metrics.CacheMisses++
	c.metrics.EmitDuration += time.Since(start)
	c.mu.Unlock()

	if err != nil {
		return &Result{GroupKey: key, Filename: filename, Hash: hash, Err: err}
	}
	c.store.Set(key, hash, filename, source)
	return &Result{
		GroupKey: key,
		Filename: filename,
		Source:   source,
		Hash:     hash,
	}
}
