package animation_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/uzochukwueddie/spin-the-match/internal/adapters/animation"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

func TestTimerAnimator_CompletesOnceAfterDuration(t *testing.T) {
	var calls atomic.Int32
	fired := make(chan time.Time, 2)

	start := time.Now()
	animation.NewTimerAnimator().Animate(ports.AnimationRequest{Duration: 30 * time.Millisecond}, func() {
		calls.Add(1)
		fired <- time.Now()
	})

	select {
	case at := <-fired:
		if at.Sub(start) < 30*time.Millisecond {
			t.Errorf("completion fired early after %v", at.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion never fired")
	}

	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 completion, got %d", n)
	}
}

func TestTimeScheduler_RunsAfterDelay(t *testing.T) {
	fired := make(chan struct{})
	animation.NewTimeScheduler().AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled func never ran")
	}
}
