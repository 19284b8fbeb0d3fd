package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Float64 returns a uniform random float in [0, 1).
	Float64() float64
}

// Side identifies one of the two competing entities.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Entity is one of the two named, colored competitors on the wheel.
type Entity struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SegmentKind identifies which outcome a segment represents.
type SegmentKind string

const (
	KindEntityA SegmentKind = "entity_a"
	KindDraw    SegmentKind = "draw"
	KindEntityB SegmentKind = "entity_b"
)

// Segment is one of the three equal angular slices of the wheel.
type Segment struct {
	Index    int         `json:"index"`
	Label    string      `json:"label"`
	Kind     SegmentKind `json:"kind"`
	Color    string      `json:"color"`
	StartDeg float64     `json:"start_deg"`
	EndDeg   float64     `json:"end_deg"`
}

// Preset holds the placeholder entities a wheel starts with.
type Preset struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	EntityA Entity `json:"entity_a" yaml:"entity_a"`
	EntityB Entity `json:"entity_b" yaml:"entity_b"`
}

// Phase is the lifecycle state of a wheel.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
	PhaseResolved Phase = "resolved"
	PhaseRevealed Phase = "revealed"
)

// Spin describes a spin that was accepted by the state machine.
type Spin struct {
	Generation uint64        `json:"generation"`
	FromDeg    float64       `json:"from_deg"`
	TargetDeg  float64       `json:"target_deg"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Easing     string        `json:"easing"`
	Segments   [3]Segment    `json:"-"`
}

// Outcome is the resolved result of a spin.
type Outcome struct {
	Generation    uint64  `json:"generation"`
	Segment       Segment `json:"segment"`
	TargetDeg     float64 `json:"target_deg"`
	NormalizedDeg float64 `json:"normalized_deg"`
	EffectiveDeg  float64 `json:"effective_deg"`
}

// State is a read-only snapshot of a wheel. Revision grows with every
// accepted change, so a newer snapshot always has a higher or equal value.
type State struct {
	Revision    uint64     `json:"revision"`
	EntityA     Entity     `json:"entity_a"`
	EntityB     Entity     `json:"entity_b"`
	Segments    [3]Segment `json:"segments"`
	Phase       Phase      `json:"phase"`
	Revealed    bool       `json:"revealed"`
	RotationDeg float64    `json:"rotation_deg"`
	Generation  uint64     `json:"generation"`
	CanSpin     bool       `json:"can_spin"`
	Spin        *Spin      `json:"spin,omitempty"`
	Outcome     *Outcome   `json:"outcome,omitempty"`
	Geometry    Geometry   `json:"geometry"`
}
