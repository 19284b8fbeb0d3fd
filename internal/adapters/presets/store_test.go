package presets

import (
	"context"
	"errors"
	"testing"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

func TestEmbeddedStore_Teams(t *testing.T) {
	s := NewEmbeddedStore()

	p, err := s.GetPreset(context.Background(), "teams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.EntityA.Name != "Team 1" || p.EntityB.Name != "Team 2" {
		t.Errorf("unexpected placeholders: %+v", p)
	}
	if p.EntityA.Color == "" || p.EntityB.Color == "" {
		t.Errorf("expected colors, got %+v", p)
	}
}

func TestEmbeddedStore_NotFound(t *testing.T) {
	s := NewEmbeddedStore()
	_, err := s.GetPreset(context.Background(), "nope")
	if !errors.Is(err, domain.ErrPresetNotFound) {
		t.Errorf("expected ErrPresetNotFound, got %v", err)
	}
}

func TestEmbeddedStore_ListSorted(t *testing.T) {
	s := NewEmbeddedStore()
	list, err := s.ListPresets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Errorf("presets not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}

func TestParsePresets_RejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"missing id": "- name: X\n",
		"duplicate":  "- id: a\n- id: a\n",
		"not yaml":   "{{{",
	}
	for name, raw := range tests {
		if _, _, err := parsePresets([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
