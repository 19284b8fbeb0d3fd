package ports

import (
	"context"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

// PresetStore provides the placeholder entities new wheels start with.
type PresetStore interface {
	GetPreset(ctx context.Context, id string) (domain.Preset, error)
	ListPresets(ctx context.Context) ([]domain.Preset, error)
}
