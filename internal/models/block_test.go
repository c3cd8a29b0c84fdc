package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestBlockPropsMap(t *testing.T) {
	tests := []struct {
		name    string
		props   json.RawMessage
		wantLen int
		wantErr bool
	}{
		{name: "nil props", props: nil, wantLen: 0},
		{name: "json null", props: json.RawMessage("null"), wantLen: 0},
		{name: "object", props: json.RawMessage(`{"title":"Hi","level":2}`), wantLen: 2},
		{name: "array is rejected", props: json.RawMessage(`[1,2]`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Block{ID: uuid.New(), Props: tt.props}
			got, err := b.PropsMap()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestBlockPropsJSON(t *testing.T) {
	if got := (&Block{}).PropsJSON(); got != "{}" {
		t.Errorf("empty props = %q, want {}", got)
	}
	b := &Block{Props: json.RawMessage(`{"a":1}`)}
	if got := b.PropsJSON(); got != `{"a":1}` {
		t.Errorf("PropsJSON = %q", got)
	}
}

func TestVisibleBlocks(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	blocks := []Block{
		{ID: a, IsVisible: true},
		{ID: b, IsVisible: false},
		{ID: c, IsVisible: true},
	}
	got := VisibleBlocks(blocks)
	if len(got) != 2 || got[0].ID != a || got[1].ID != c {
		t.Errorf("VisibleBlocks = %+v", got)
	}
}
