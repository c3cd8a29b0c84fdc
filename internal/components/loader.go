// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package components

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"blockpress/internal/themes"
)

// ManifestSource supplies the manifests of themes on disk.
// *themes.Registry satisfies it.
type ManifestSource interface {
	Manifest(id string) (*themes.Manifest, error)
	ThemeDir(id string) string
}

// Info describes a component a theme can render.
type Info struct {
	Type   string `json:"type"`
	Theme  string `json:"theme"` // theme providing the implementation
	Schema Schema `json:"schema"`
}

// Loader resolves components by theme and block type. Compiled themes are
// used directly; disk themes are built on first use and cached until
// invalidated.
type Loader struct {
	source ManifestSource
	cache  *themeCache
	sf     singleflight.Group
}

// NewLoader creates a Loader. A nil source limits it to compiled themes.
func NewLoader(source ManifestSource) *Loader {
	return &Loader{source: source, cache: newThemeCache()}
}

// Theme returns the theme with the given id. Compiled themes take precedence
// over a disk theme of the same id.
func (l *Loader) Theme(id string) (*Theme, error) {
	if t, ok := Compiled(id); ok {
		return t, nil
	}
	if l.source == nil || !themes.ValidID(id) {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
	}
	if t := l.cache.get(id); t != nil {
		return t, nil
	}

	v, err, _ := l.sf.Do(id, func() (any, error) {
		gen := l.cache.generation(id)
		m, err := l.source.Manifest(id)
		if errors.Is(err, themes.ErrNoManifest) {
			return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("load theme %s: %w", id, err)
		}
		t, err := buildTheme(m, l.source.ThemeDir(id), l.fallbackFor(m))
		if err != nil {
			return nil, err
		}
		l.cache.put(id, gen, t)
		zap.S().Infow("theme loaded", "theme", id, "version", m.Version, "components", len(m.Components))
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Theme), nil
}

// fallbackFor picks the compiled theme a manifest extends, or the default.
func (l *Loader) fallbackFor(m *themes.Manifest) *Theme {
	if m.Extends != "" {
		if t, ok := Compiled(m.Extends); ok {
			return t
		}
		zap.S().Warnw("theme extends unknown compiled theme, using default",
			"theme", m.ID,
			"extends", m.Extends,
		)
	}
	t, _ := Compiled(DefaultThemeID)
	return t
}

// buildTheme compiles the component templates a manifest declares.
func buildTheme(m *themes.Manifest, dir string, fallback *Theme) (*Theme, error) {
	t := NewTheme(m.ID, m.Name, fallback)
	t.Version = m.Version
	t.Stylesheet = m.Stylesheet

	for _, spec := range m.Components {
		src, err := os.ReadFile(filepath.Join(dir, spec.Template))
		if err != nil {
			return nil, fmt.Errorf("read component %s of theme %s: %w", spec.Type, m.ID, err)
		}
		schema, err := schemaFromSpec(spec.Props)
		if err != nil {
			return nil, fmt.Errorf("component %s of theme %s: %w", spec.Type, m.ID, err)
		}
		c, err := newTemplateComponent(spec.Type, string(src), schema)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", m.ID, err)
		}
		t.Add(c)
	}
	return t, nil
}

func schemaFromSpec(props []themes.PropSpec) (Schema, error) {
	s := Schema{Fields: make([]Field, 0, len(props))}
	for _, p := range props {
		kind := Kind(p.Kind)
		if kind == "" {
			kind = KindAny
		}
		if !ValidKind(kind) {
			return Schema{}, fmt.Errorf("prop %s has unknown type %q", p.Name, p.Kind)
		}
		s.Fields = append(s.Fields, Field{
			Name:        p.Name,
			Kind:        kind,
			Required:    p.Required,
			Description: p.Description,
		})
	}
	return s, nil
}

// Resolve returns the component for componentType in the given theme.
func (l *Loader) Resolve(themeID, componentType string) (Component, error) {
	t, err := l.Theme(themeID)
	if err != nil {
		return nil, err
	}
	c, _, ok := t.Lookup(componentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s in theme %s", ErrComponentNotFound, componentType, themeID)
	}
	return c, nil
}

// Render validates props against the component's schema and renders it.
// Invalid props yield a *PropsError.
func (l *Loader) Render(w io.Writer, themeID, componentType string, props Props) error {
	c, err := l.Resolve(themeID, componentType)
	if err != nil {
		return err
	}
	if err := c.Schema().Validate(componentType, props); err != nil {
		return err
	}
	return c.Render(w, props)
}

// Describe lists every component the theme can render, including the ones
// inherited from its fallback.
func (l *Loader) Describe(themeID string) ([]Info, error) {
	t, err := l.Theme(themeID)
	if err != nil {
		return nil, err
	}
	types := t.Types()
	out := make([]Info, 0, len(types))
	for _, typ := range types {
		c, owner, _ := t.Lookup(typ)
		out = append(out, Info{Type: typ, Theme: owner.ID, Schema: c.Schema()})
	}
	return out, nil
}

// Invalidate drops a cached disk theme.
func (l *Loader) Invalidate(themeID string) {
	l.cache.invalidate(themeID)
}

// InvalidateAll drops every cached disk theme.
func (l *Loader) InvalidateAll() {
	l.cache.invalidateAll()
}

// Cached lists the ids of the disk themes currently cached.
func (l *Loader) Cached() []string {
	return l.cache.ids()
}
