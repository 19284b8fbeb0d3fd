package tui

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeDuration = 350 * time.Millisecond
)

// Chime plays a short sound when an outcome is revealed.
type Chime interface {
	Play(kind domain.SegmentKind)
	Close()
}

// NopChime is used when sound is off or no audio device is available.
type NopChime struct{}

func (NopChime) Play(domain.SegmentKind) {}
func (NopChime) Close()                  {}

// SpeakerChime plays sine chords through the default audio device.
type SpeakerChime struct{}

// NewSpeakerChime opens the speaker.
func NewSpeakerChime() (*SpeakerChime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &SpeakerChime{}, nil
}

// Play sounds a bright fifth for a winner and a low tone for a draw.
func (c *SpeakerChime) Play(kind domain.SegmentKind) {
	freqs := []float64{660, 990}
	if kind == domain.KindDraw {
		freqs = []float64{330}
	}

	streamers := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := generators.SineTone(sampleRate, f)
		if err != nil {
			continue
		}
		streamers = append(streamers, beep.Take(sampleRate.N(chimeDuration), tone))
	}
	if len(streamers) == 0 {
		return
	}

	speaker.Play(&effects.Volume{
		Streamer: beep.Mix(streamers...),
		Base:     2,
		Volume:   -float64(len(streamers)),
	})
}

func (c *SpeakerChime) Close() {
	speaker.Close()
}
