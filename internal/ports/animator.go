package ports

import "time"

// AnimationRequest describes the rotation a front end animates for one spin.
type AnimationRequest struct {
	WheelID    string        `json:"wheel_id"`
	Generation uint64        `json:"generation"`
	FromDeg    float64       `json:"from_deg"`
	ToDeg      float64       `json:"to_deg"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Easing     string        `json:"easing"`
}

// Animator runs the wheel rotation. Implementations call done exactly once
// per Animate call, after the animation has finished.
type Animator interface {
	Animate(req AnimationRequest, done func())
}

// Scheduler runs f once after d. Used for the cosmetic reveal delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}
