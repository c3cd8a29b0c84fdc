// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package components

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"blockpress/internal/metrics"
)

// themeCache holds themes built from disk, keyed by theme id. A generation
// counter keeps a build that started before an invalidation from being
// stored after it.
type themeCache struct {
	mu      sync.RWMutex
	entries map[string]*Theme
	gen     map[string]uint64
	epoch   uint64
}

func newThemeCache() *themeCache {
	return &themeCache{
		entries: make(map[string]*Theme),
		gen:     make(map[string]uint64),
	}
}

// get returns a cached theme, or nil on miss.
func (c *themeCache) get(id string) *Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id]
}

// generation identifies the cache state for id. Pass it to put.
func (c *themeCache) generation(id string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch + c.gen[id]
}

// put stores t unless id was invalidated since gen was taken.
func (c *themeCache) put(id string, gen uint64, t *Theme) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch+c.gen[id] != gen {
		return false
	}
	c.entries[id] = t
	metrics.ComponentThemesCached.Set(float64(len(c.entries)))
	zap.S().Debugw("component theme cached", "theme", id, "version", t.Version, "size", len(c.entries))
	return true
}

// invalidate drops one theme.
func (c *themeCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.gen[id]++
	metrics.ComponentThemesCached.Set(float64(len(c.entries)))
	zap.S().Debugw("component theme invalidated", "theme", id)
}

// invalidateAll drops every theme.
func (c *themeCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Theme)
	c.epoch++
	metrics.ComponentThemesCached.Set(0)
	zap.S().Debugw("component theme cache cleared")
}

// ids lists the cached theme ids, sorted.
func (c *themeCache) ids() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
