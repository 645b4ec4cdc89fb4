package judge

import (
	"context"
	"sync"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

// InferenceCache fronts the judge's LLM calls. It is an explicit dependency,
// not ambient package state, so the judge is testable without environment
// setup.
type InferenceCache interface {
	Get(ctx context.Context, key string) (model.Verdict, bool)
	Set(ctx context.Context, key string, v model.Verdict)
	Persist(ctx context.Context) error
}

// MemoryCache keeps verdicts for the life of the process. Persist is a no-op.
type MemoryCache struct {
	mu       sync.Mutex
	verdicts map[string]model.Verdict
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{verdicts: make(map[string]model.Verdict)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (model.Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.verdicts[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, v model.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[key] = v
}

func (c *MemoryCache) Persist(context.Context) error { return nil }

// VerdictStore is the durable backend for a StoreCache.
type VerdictStore interface {
	Find(ctx context.Context, key string) (*model.Verdict, error)
	Upsert(ctx context.Context, key string, v model.Verdict) error
}

// StoreCache is a write-behind cache over a VerdictStore: reads fall through
// to the store, writes accumulate in memory until Persist flushes them.
type StoreCache struct {
	mu    sync.Mutex
	mem   map[string]model.Verdict
	dirty map[string]model.Verdict
	store VerdictStore
}

func NewStoreCache(store VerdictStore) *StoreCache {
	return &StoreCache{
		mem:   make(map[string]model.Verdict),
		dirty: make(map[string]model.Verdict),
		store: store,
	}
}

func (c *StoreCache) Get(ctx context.Context, key string) (model.Verdict, bool) {
	c.mu.Lock()
	if v, ok := c.mem[key]; ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	v, err := c.store.Find(ctx, key)
	if err != nil || v == nil {
		return model.Verdict{}, false
	}
	c.mu.Lock()
	c.mem[key] = *v
	c.mu.Unlock()
	return *v, true
}

func (c *StoreCache) Set(_ context.Context, key string, v model.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = v
	c.dirty[key] = v
}

func (c *StoreCache) Persist(ctx context.Context) error {
	c.mu.Lock()
	pending := c.dirty
	c.dirty = make(map[string]model.Verdict)
	c.mu.Unlock()

	for key, v := range pending {
		if err := c.store.Upsert(ctx, key, v); err != nil {
			// Put the unflushed entries back so a later Persist retries them.
			c.mu.Lock()
			for k, pv := range pending {
				if _, overwritten := c.dirty[k]; !overwritten {
					c.dirty[k] = pv
				}
			}
			c.mu.Unlock()
			return err
		}
		delete(pending, key)
	}
	return nil
}
