// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Block is one component instance inside a page or a template. ParentID is
// the owning page id for page blocks and the template id for template blocks.
type Block struct {
	ID            uuid.UUID       `json:"id"`
	ParentID      uuid.UUID       `json:"parent_id"`
	ComponentType string          `json:"component_type"`
	Props         json.RawMessage `json:"props"`
	OrderIndex    int             `json:"order_index"`
	IsVisible     bool            `json:"is_visible"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PropsMap decodes the block props. Empty props decode to an empty map.
func (b *Block) PropsMap() (map[string]any, error) {
	out := map[string]any{}
	if len(b.Props) == 0 || string(b.Props) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(b.Props, &out); err != nil {
		return nil, fmt.Errorf("decode props of block %s: %w", b.ID, err)
	}
	return out, nil
}

// PropsJSON returns the props as a JSON document suitable for a JSONB column.
func (b *Block) PropsJSON() string {
	if len(b.Props) == 0 {
		return "{}"
	}
	return string(b.Props)
}

// VisibleBlocks returns the visible blocks in their existing order.
func VisibleBlocks(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.IsVisible {
			out = append(out, b)
		}
	}
	return out
}
