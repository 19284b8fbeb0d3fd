package presets

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

//go:embed data/presets.yaml
var presetFS embed.FS

const presetFile = "data/presets.yaml"

// EmbeddedStore loads entity presets from the embedded YAML file.
type EmbeddedStore struct {
	once    sync.Once
	presets map[string]domain.Preset
	order   []string
	err     error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

func (s *EmbeddedStore) init() {
	raw, err := presetFS.ReadFile(presetFile)
	if err != nil {
		s.err = fmt.Errorf("read embedded presets: %w", err)
		return
	}
	s.presets, s.order, s.err = parsePresets(raw)
}

func parsePresets(raw []byte) (map[string]domain.Preset, []string, error) {
	var list []domain.Preset
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, nil, fmt.Errorf("parse presets: %w", err)
	}

	presets := make(map[string]domain.Preset, len(list))
	order := make([]string, 0, len(list))
	for _, p := range list {
		if p.ID == "" {
			return nil, nil, fmt.Errorf("parse presets: preset without id")
		}
		if _, dup := presets[p.ID]; dup {
			return nil, nil, fmt.Errorf("parse presets: duplicate id %q", p.ID)
		}
		presets[p.ID] = p
		order = append(order, p.ID)
	}
	sort.Strings(order)
	return presets, order, nil
}

func (s *EmbeddedStore) GetPreset(_ context.Context, id string) (domain.Preset, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Preset{}, s.err
	}
	p, ok := s.presets[id]
	if !ok {
		return domain.Preset{}, fmt.Errorf("%w: %q", domain.ErrPresetNotFound, id)
	}
	return p, nil
}

func (s *EmbeddedStore) ListPresets(_ context.Context) ([]domain.Preset, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Preset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.presets[id])
	}
	return out, nil
}
