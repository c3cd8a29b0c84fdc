// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package components

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"blockpress/internal/markdown"
)

// SiteContext is the value stored under SiteKey.
type SiteContext struct {
	ID          string
	Title       string
	Description string
	ThemeID     string
	Navigation  []NavLink
}

// NavLink is one visible navigation entry.
type NavLink struct {
	Label  string
	URL    string
	NewTab bool
}

// funcMap is available to every component template.
var funcMap = template.FuncMap{
	"markdown": func(v any) template.HTML {
		if v == nil {
			return ""
		}
		return markdown.HTML(fmt.Sprint(v))
	},
	"default": func(def, v any) any {
		if v == nil {
			return def
		}
		if s, ok := v.(string); ok && s == "" {
			return def
		}
		return v
	},
	"year": func() int { return time.Now().Year() },
}

// templateComponent renders a block with an html/template.
type templateComponent struct {
	typ    string
	schema Schema
	tmpl   *template.Template
}

func newTemplateComponent(typ, src string, schema Schema) (*templateComponent, error) {
	tmpl, err := template.New(typ).Option("missingkey=zero").Funcs(funcMap).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("compile component %s: %w", typ, err)
	}
	return &templateComponent{typ: typ, schema: schema, tmpl: tmpl}, nil
}

// mustTemplateComponent is newTemplateComponent for sources compiled into
// the binary.
func mustTemplateComponent(typ, src string, fields ...Field) *templateComponent {
	c, err := newTemplateComponent(typ, src, Schema{Fields: fields})
	if err != nil {
		panic(err)
	}
	return c
}

func (c *templateComponent) Type() string   { return c.typ }
func (c *templateComponent) Schema() Schema { return c.schema }

// Render executes the template into a buffer first, so a failing block
// never writes partial markup.
func (c *templateComponent) Render(w io.Writer, props Props) error {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, map[string]any(props)); err != nil {
		return fmt.Errorf("render component %s: %w", c.typ, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
