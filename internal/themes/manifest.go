// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package themes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFiles are the file names that mark a directory as a theme, in
// lookup order.
var ManifestFiles = []string{"theme.yaml", "register-blocks.yaml", "auto-register.yaml"}

// ErrNoManifest is returned when a theme directory has no manifest file.
var ErrNoManifest = errors.New("theme manifest not found")

// Manifest describes a theme directory.
type Manifest struct {
	ID          string          `yaml:"-" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Version     string          `yaml:"version" json:"version,omitempty"`
	Description string          `yaml:"description" json:"description,omitempty"`
	Author      string          `yaml:"author" json:"author,omitempty"`
	Extends     string          `yaml:"extends" json:"extends,omitempty"`       // theme used for undeclared types
	Stylesheet  string          `yaml:"stylesheet" json:"stylesheet,omitempty"` // relative to assets/
	Components  []ComponentSpec `yaml:"components" json:"components"`
}

// ComponentSpec declares one block type implemented by a template file.
type ComponentSpec struct {
	Type        string     `yaml:"type" json:"type"`
	Template    string     `yaml:"template" json:"template"` // relative to the theme directory
	Description string     `yaml:"description" json:"description,omitempty"`
	Props       []PropSpec `yaml:"props" json:"props,omitempty"`
}

// PropSpec declares one property of a component.
type PropSpec struct {
	Name        string `yaml:"name" json:"name"`
	Kind        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// manifestPath returns the first manifest file present in dir.
func manifestPath(dir string) (string, bool) {
	for _, name := range ManifestFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// LoadManifest parses the manifest of the theme stored in dir.
func LoadManifest(id, dir string) (*Manifest, error) {
	path, ok := manifestPath(dir)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoManifest, id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.ID = id
	if m.Name == "" {
		m.Name = id
	}

	seen := make(map[string]bool, len(m.Components))
	for i, c := range m.Components {
		if c.Type == "" || c.Template == "" {
			return nil, fmt.Errorf("manifest %s: component %d needs type and template", path, i)
		}
		if seen[c.Type] {
			return nil, fmt.Errorf("manifest %s: component %q declared twice", path, c.Type)
		}
		if !filepath.IsLocal(c.Template) {
			return nil, fmt.Errorf("manifest %s: template %q escapes the theme directory", path, c.Template)
		}
		seen[c.Type] = true
	}
	return m, nil
}
