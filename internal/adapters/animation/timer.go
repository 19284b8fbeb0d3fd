package animation

import (
	"time"

	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

// TimerAnimator stands in for the client-side animation on the server: the
// real rotation runs in the browser, the server only waits out its duration.
type TimerAnimator struct{}

func NewTimerAnimator() *TimerAnimator {
	return &TimerAnimator{}
}

func (TimerAnimator) Animate(req ports.AnimationRequest, done func()) {
	time.AfterFunc(req.Duration, done)
}

// TimeScheduler runs deferred callbacks on the runtime timer.
type TimeScheduler struct{}

func NewTimeScheduler() *TimeScheduler {
	return &TimeScheduler{}
}

func (TimeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
