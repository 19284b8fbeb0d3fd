package domain

import (
	"fmt"
	"strings"
	"time"
)

// Wheel is the spin lifecycle state machine for one pair of entities.
//
// It enforces idle → spinning → resolved → revealed → idle and owns the
// cumulative rotation. A Wheel is not safe for concurrent use; callers
// serialize access to it.
type Wheel struct {
	entities     [2]Entity
	placeholders [2]string

	phase        Phase
	rotation     float64
	generation   uint64
	revision     uint64
	spin         *Spin
	outcome      *Outcome
	geometry     Geometry
	spinDuration time.Duration
}

// NewWheel creates an idle wheel whose entities start at the preset's
// placeholder values.
func NewWheel(p Preset) *Wheel {
	return &Wheel{
		entities:     [2]Entity{p.EntityA, p.EntityB},
		placeholders: [2]string{strings.TrimSpace(p.EntityA.Name), strings.TrimSpace(p.EntityB.Name)},
		phase:        PhaseIdle,
		geometry:     DefaultGeometry(),
		spinDuration: SpinDuration,
	}
}

// SetSpinDuration changes how long later spins animate. Non-positive
// durations are ignored.
func (w *Wheel) SetSpinDuration(d time.Duration) {
	if d > 0 {
		w.spinDuration = d
	}
}

func sideIndex(side Side) (int, error) {
	switch side {
	case SideA:
		return 0, nil
	case SideB:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
}

// SetName changes an entity's name. Allowed in every phase; a spin in
// flight keeps the segments it started with.
func (w *Wheel) SetName(side Side, name string) error {
	i, err := sideIndex(side)
	if err != nil {
		return err
	}
	w.entities[i].Name = name
	w.revision++
	return nil
}

// SetColor changes an entity's color token.
func (w *Wheel) SetColor(side Side, color string) error {
	i, err := sideIndex(side)
	if err != nil {
		return err
	}
	w.entities[i].Color = color
	w.revision++
	return nil
}

// Segments derives the current segments from the live entity names.
func (w *Wheel) Segments() [SegmentCount]Segment {
	return BuildSegments(w.entities[0], w.entities[1])
}

// Ready reports whether both names are non-empty and no longer the
// placeholder defaults.
func (w *Wheel) Ready() bool {
	for i, e := range w.entities {
		name := strings.TrimSpace(e.Name)
		if name == "" || name == w.placeholders[i] {
			return false
		}
	}
	return true
}

// CanSpin reports whether StartSpin would be accepted right now.
func (w *Wheel) CanSpin() bool {
	return w.Ready() && (w.phase == PhaseIdle || w.phase == PhaseRevealed)
}

// Resize recomputes geometry for a new container width. Non-positive
// widths are rejected and the last valid geometry is kept.
func (w *Wheel) Resize(containerWidth int) (Geometry, error) {
	if containerWidth <= 0 {
		return w.geometry, ErrInvalidWidth
	}
	w.geometry = GeometryFor(containerWidth)
	w.revision++
	return w.geometry, nil
}

// StartSpin accepts a new spin from the idle or revealed phase, snapshots
// the segments and clears any previous outcome.
func (w *Wheel) StartSpin(rng RNG) (Spin, error) {
	switch w.phase {
	case PhaseSpinning:
		return Spin{}, ErrSpinInProgress
	case PhaseResolved:
		return Spin{}, ErrRevealPending
	}
	if !w.Ready() {
		return Spin{}, ErrEntitiesNotReady
	}

	target, _ := NextTarget(w.rotation, rng)
	w.generation++
	spin := Spin{
		Generation: w.generation,
		FromDeg:    w.rotation,
		TargetDeg:  target,
		Duration:   w.spinDuration,
		DurationMS: w.spinDuration.Milliseconds(),
		Easing:     SpinEasing,
		Segments:   w.Segments(),
	}

	w.spin = &spin
	w.outcome = nil
	w.phase = PhaseSpinning
	w.revision++
	return spin, nil
}

// Complete handles the animation-completion signal for generation gen.
// The stored rotation becomes exactly the spin's target.
func (w *Wheel) Complete(gen uint64) (Outcome, error) {
	if w.phase != PhaseSpinning {
		return Outcome{}, ErrNoSpinInFlight
	}
	if w.spin.Generation != gen {
		return Outcome{}, ErrStaleSpin
	}

	out := Resolve(w.spin.Segments, w.spin.TargetDeg)
	out.Generation = gen

	w.rotation = w.spin.TargetDeg
	w.outcome = &out
	w.phase = PhaseResolved
	w.revision++
	return out, nil
}

// Reveal ends the cosmetic delay for generation gen.
func (w *Wheel) Reveal(gen uint64) (Outcome, error) {
	if w.phase != PhaseResolved {
		return Outcome{}, ErrNoSpinInFlight
	}
	if w.outcome.Generation != gen {
		return Outcome{}, ErrStaleSpin
	}
	w.phase = PhaseRevealed
	w.revision++
	return *w.outcome, nil
}

// Dismiss closes a revealed outcome. The wheel keeps its rotation.
func (w *Wheel) Dismiss() error {
	if w.phase != PhaseRevealed {
		return ErrNothingToDismiss
	}
	w.outcome = nil
	w.phase = PhaseIdle
	w.revision++
	return nil
}

// Phase returns the current lifecycle phase.
func (w *Wheel) Phase() Phase { return w.phase }

// RotationDeg returns the cumulative rotation.
func (w *Wheel) RotationDeg() float64 { return w.rotation }

// State returns a snapshot safe to hand to other goroutines. The outcome
// is only included once revealed.
func (w *Wheel) State() State {
	st := State{
		Revision:    w.revision,
		EntityA:     w.entities[0],
		EntityB:     w.entities[1],
		Segments:    w.Segments(),
		Phase:       w.phase,
		Revealed:    w.phase == PhaseRevealed,
		RotationDeg: w.rotation,
		Generation:  w.generation,
		CanSpin:     w.CanSpin(),
		Geometry:    w.geometry,
	}
	st.Geometry.Labels = append([]LabelPlacement(nil), w.geometry.Labels...)
	if w.spin != nil {
		spin := *w.spin
		st.Spin = &spin
	}
	if w.outcome != nil && w.phase == PhaseRevealed {
		out := *w.outcome
		st.Outcome = &out
	}
	return st
}
