package domain

import (
	"math"
	"time"
)

const (
	MinFullSpins   = 6
	ExtraSpinRange = 3

	SpinDuration = 5000 * time.Millisecond
	RevealDelay  = 250 * time.Millisecond
	SpinEasing   = "cubic-bezier(0.17, 0.67, 0.12, 0.99)"
)

// NextTarget picks the rotation the wheel animates to from current.
// The increment is always 6 to 8 full turns plus an angle in [0, 360).
func NextTarget(current float64, rng RNG) (target, increment float64) {
	fullSpins := MinFullSpins + int(math.Floor(rng.Float64()*ExtraSpinRange))
	if fullSpins >= MinFullSpins+ExtraSpinRange {
		fullSpins = MinFullSpins + ExtraSpinRange - 1
	}
	randomAngle := rng.Float64() * 360

	increment = float64(fullSpins)*360 + randomAngle
	return current + increment, increment
}

// NormalizeAngle reduces any rotation into [0, 360).
func NormalizeAngle(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// EffectiveAngle re-expresses a normalized clockwise rotation in the
// wheel's own frame, where the pointer stays fixed at the top.
func EffectiveAngle(normalized float64) float64 {
	return math.Mod(360-normalized, 360)
}

// WinningIndex returns the segment under the pointer for a rotation.
// A boundary angle belongs to the segment that starts there.
func WinningIndex(targetDeg float64) int {
	eff := EffectiveAngle(NormalizeAngle(targetDeg))
	return int(math.Floor(eff/SegmentSpanDeg)) % SegmentCount
}

// Resolve maps a final rotation to its outcome. It is a pure function of
// its inputs.
func Resolve(segments [SegmentCount]Segment, targetDeg float64) Outcome {
	normalized := NormalizeAngle(targetDeg)
	return Outcome{
		Segment:       segments[WinningIndex(targetDeg)],
		TargetDeg:     targetDeg,
		NormalizedDeg: normalized,
		EffectiveDeg:  EffectiveAngle(normalized),
	}
}
