package database

import (
	"context"
	"sync"

	"score-bot/model"
)

// ModuleCache keeps the module switches of each guild in memory. Writes go
// through the cache so readers never see a stale value from this process.
type ModuleCache struct {
	db      *DB
	mu      sync.RWMutex
	modules map[int64]model.Modules
	// gen changes on every invalidation so a load racing a write is not cached.
	gen uint64
}

// NewModuleCache creates an empty cache over db.
func NewModuleCache(db *DB) *ModuleCache {
	return &ModuleCache{db: db, modules: make(map[int64]model.Modules)}
}

// Get returns the modules of guild, loading them on first use.
func (c *ModuleCache) Get(ctx context.Context, guild int64) (model.Modules, error) {
	c.mu.RLock()
	m, ok := c.modules[guild]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := Modules(ctx, c.db, guild)
	if err != nil {
		return m, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.modules[guild] = m
	}
	c.mu.Unlock()
	return m, nil
}

// Set stores a module switch and drops the cached entry of guild.
func (c *ModuleCache) Set(ctx context.Context, guild int64, module string, enabled bool) error {
	defer c.Invalidate(guild)
	return SetModule(ctx, c.db, guild, module, enabled)
}

// Invalidate forgets the cached modules of guild.
func (c *ModuleCache) Invalidate(guild int64) {
	c.mu.Lock()
	delete(c.modules, guild)
	c.gen++
	c.mu.Unlock()
}

// Reset forgets every cached entry.
func (c *ModuleCache) Reset() {
	c.mu.Lock()
	c.modules = make(map[int64]model.Modules)
	c.gen++
	c.mu.Unlock()
}
