// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package components

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the declared type of a prop.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "boolean"
	KindArray  Kind = "array"
	KindObject Kind = "object"
	KindAny    Kind = "any"
)

// ValidKind reports whether k is a known prop kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindString, KindNumber, KindBool, KindArray, KindObject, KindAny:
		return true
	}
	return false
}

// Field declares one prop of a component.
type Field struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema lists the props a component accepts. Props not declared in the
// schema are allowed and passed through.
type Schema struct {
	Fields []Field `json:"fields"`
}

// PropsError reports props that do not match a component's schema.
type PropsError struct {
	Component string
	Problems  []string
}

func (e *PropsError) Error() string {
	return fmt.Sprintf("invalid props for %s: %s", e.Component, strings.Join(e.Problems, "; "))
}

// Validate checks required fields and declared kinds. Keys starting with an
// underscore are reserved for render context and are never checked.
func (s Schema) Validate(component string, props Props) error {
	var problems []string
	for _, f := range s.Fields {
		v, ok := props[f.Name]
		if !ok || v == nil {
			if f.Required {
				problems = append(problems, f.Name+" is required")
			}
			continue
		}
		if f.Required && f.Kind == KindString {
			if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
				problems = append(problems, f.Name+" is required")
				continue
			}
		}
		if !kindMatches(f.Kind, v) {
			problems = append(problems, fmt.Sprintf("%s must be %s", f.Name, f.Kind))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &PropsError{Component: component, Problems: problems}
}

func kindMatches(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindArray:
		_, ok := v.([]any)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}
