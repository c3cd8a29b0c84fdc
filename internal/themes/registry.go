// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package themes discovers the themes available on disk. A theme is a
// subdirectory of the themes directory that contains a manifest file.
// Discovery results are cached for a short TTL and fall back to a fixed list
// when the directory cannot be read.
package themes

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"blockpress/internal/metrics"
)

// DefaultTTL is the discovery cache lifetime when none is configured.
const DefaultTTL = 10 * time.Second

// maxIDLength matches the common file name limit.
const maxIDLength = 255

// ValidID reports whether id can name a theme directory: a single path
// element, so it is safe to join onto the themes directory. Any directory
// name holding a manifest is a valid id.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > maxIDLength {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

// Options configure a Registry.
type Options struct {
	Dir      string
	TTL      time.Duration // zero disables caching
	Fallback []string      // returned when Dir cannot be read
	Builtin  []string      // compiled-in themes, always available
}

// Registry lists themes on disk.
type Registry struct {
	dir      string
	ttl      time.Duration
	fallback []string
	builtin  []string
	now      func() time.Time

	mu      sync.RWMutex
	cached  []string
	expires time.Time
	gen     uint64 // bumped by Invalidate

	sf singleflight.Group

	afterScan func() // test hook, runs between scan and store
}

// NewRegistry creates a Registry. An empty fallback list becomes ["default"].
func NewRegistry(opts Options) *Registry {
	fallback := opts.Fallback
	if len(fallback) == 0 {
		fallback = []string{"default"}
	}
	return &Registry{
		dir:      opts.Dir,
		ttl:      opts.TTL,
		fallback: append([]string(nil), fallback...),
		builtin:  append([]string(nil), opts.Builtin...),
		now:      time.Now,
	}
}

// Dir returns the themes directory.
func (r *Registry) Dir() string { return r.dir }

// ThemeDir returns the directory of a theme. The id must satisfy ValidID.
func (r *Registry) ThemeDir(id string) string {
	return filepath.Join(r.dir, id)
}

// Discover returns the sorted ids of subdirectories that contain a manifest.
// Concurrent cache misses share one directory scan.
func (r *Registry) Discover() []string {
	r.mu.RLock()
	if r.cached != nil && r.now().Before(r.expires) {
		out := append([]string(nil), r.cached...)
		r.mu.RUnlock()
		return out
	}
	gen := r.gen
	r.mu.RUnlock()

	// Callers arriving after an invalidation never join an older scan.
	v, _, _ := r.sf.Do("scan:"+strconv.FormatUint(gen, 10), func() (any, error) {
		ids := r.scan()
		if r.afterScan != nil {
			r.afterScan()
		}
		if r.ttl > 0 {
			r.mu.Lock()
			if r.gen == gen {
				r.cached = ids
				r.expires = r.now().Add(r.ttl)
			}
			r.mu.Unlock()
		}
		return ids, nil
	})
	return append([]string(nil), v.([]string)...)
}

// scan reads the directory. Read errors yield the fallback list.
func (r *Registry) scan() []string {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		zap.S().Warnw("themes directory unreadable, using fallback",
			"dir", r.dir,
			"fallback", r.fallback,
			"error", err,
		)
		metrics.ThemeScans.WithLabelValues("fallback").Inc()
		return append([]string(nil), r.fallback...)
	}

	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		// Stat follows symlinked theme directories.
		info, err := os.Stat(filepath.Join(r.dir, name))
		if err != nil || !info.IsDir() {
			continue
		}
		if _, ok := manifestPath(filepath.Join(r.dir, name)); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	metrics.ThemeScans.WithLabelValues("ok").Inc()
	zap.S().Debugw("themes discovered", "dir", r.dir, "themes", ids)
	return ids
}

// Available returns the discovered themes plus the compiled-in ones, sorted
// and without duplicates.
func (r *Registry) Available() []string {
	set := make(map[string]bool)
	for _, id := range r.Discover() {
		set[id] = true
	}
	for _, id := range r.builtin {
		set[id] = true
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Has reports whether id is an available theme.
func (r *Registry) Has(id string) bool {
	for _, t := range r.Available() {
		if t == id {
			return true
		}
	}
	return false
}

// IsBuiltin reports whether id is a compiled-in theme.
func (r *Registry) IsBuiltin(id string) bool {
	for _, t := range r.builtin {
		if t == id {
			return true
		}
	}
	return false
}

// Invalidate drops the cached discovery result.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.expires = time.Time{}
	r.gen++
	r.mu.Unlock()
	zap.S().Debugw("theme registry invalidated", "dir", r.dir)
}

// Manifest parses the manifest of a theme on disk.
func (r *Registry) Manifest(id string) (*Manifest, error) {
	if !ValidID(id) {
		return nil, ErrNoManifest
	}
	return LoadManifest(id, r.ThemeDir(id))
}
