// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package components renders content blocks. Each theme maps block types to
// Components; compiled themes are registered from Go code at init, and
// themes on disk are built from the html/template files their manifest
// declares. A Loader resolves components per theme and caches disk themes.
package components

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrThemeNotFound     = errors.New("theme not found")
)

// Props are the decoded JSON props of a block.
type Props map[string]any

// SiteKey is the reserved prop holding the render context of the site
// (title and navigation links). The engine sets it on every block.
const SiteKey = "_site"

// Component renders one block type.
type Component interface {
	Type() string
	Schema() Schema
	Render(w io.Writer, props Props) error
}

// Theme is a table of components keyed by block type. Lookups that miss
// continue in the fallback theme.
type Theme struct {
	ID         string
	Name       string
	Version    string
	Stylesheet string // path below the theme's assets
	Assets     fs.FS  // compiled themes only; disk themes serve assets/ from their directory

	components map[string]Component
	fallback   *Theme
}

// NewTheme creates an empty theme.
func NewTheme(id, name string, fallback *Theme) *Theme {
	return &Theme{ID: id, Name: name, components: make(map[string]Component), fallback: fallback}
}

// Add registers c under its type, replacing any previous component.
func (t *Theme) Add(c Component) {
	t.components[c.Type()] = c
}

// Lookup finds the component for typ in t or its fallbacks.
func (t *Theme) Lookup(typ string) (Component, *Theme, bool) {
	for cur := t; cur != nil; cur = cur.fallback {
		if c, ok := cur.components[typ]; ok {
			return c, cur, true
		}
	}
	return nil, nil, false
}

// Types returns every block type t can render, sorted.
func (t *Theme) Types() []string {
	set := make(map[string]bool)
	for cur := t; cur != nil; cur = cur.fallback {
		for typ := range cur.components {
			set[typ] = true
		}
	}
	out := make([]string, 0, len(set))
	for typ := range set {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the theme consulted for undeclared types, or nil.
func (t *Theme) Fallback() *Theme { return t.fallback }

var (
	compiledMu sync.RWMutex
	compiled   = make(map[string]*Theme)
)

// Register makes a compiled theme available under its id. It panics if the
// id is already taken.
func Register(t *Theme) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if _, dup := compiled[t.ID]; dup {
		panic(fmt.Sprintf("components: theme %q registered twice", t.ID))
	}
	compiled[t.ID] = t
}

// Compiled returns a compiled theme.
func Compiled(id string) (*Theme, bool) {
	compiledMu.RLock()
	defer compiledMu.RUnlock()
	t, ok := compiled[id]
	return t, ok
}

// CompiledIDs returns the ids of all compiled themes, sorted.
func CompiledIDs() []string {
	compiledMu.RLock()
	defer compiledMu.RUnlock()
	ids := make([]string, 0, len(compiled))
	for id := range compiled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
