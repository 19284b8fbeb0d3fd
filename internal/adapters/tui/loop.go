package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/domain"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

const (
	frameInterval = 16 * time.Millisecond
	maxNameLen    = 64
)

// Controller is the wheel API the terminal drives.
type Controller interface {
	GetWheel(ctx context.Context, id string) (app.Result, error)
	Spin(ctx context.Context, id string) (app.Result, error)
	SpinAgain(ctx context.Context, id string) (app.Result, error)
	Dismiss(ctx context.Context, id string) (app.Result, error)
	Resize(ctx context.Context, id string, width int) (app.Result, error)
	UpdateEntity(ctx context.Context, id string, side domain.Side, upd app.EntityUpdate) (app.Result, error)
}

type animation struct {
	req   ports.AnimationRequest
	curve CubicBezier
	start time.Time
	done  func()
}

// Loop is the terminal front end. It plugs into the wheel service's
// animation and event ports and runs every callback on its own goroutine.
type Loop struct {
	screen tcell.Screen
	chime  Chime
	logger *slog.Logger

	now       func() time.Time
	afterFunc func(d time.Duration, f func())

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	// Owned by the loop goroutine.
	ctrl     Controller
	wheelID  string
	state    domain.State
	rotation float64
	anim     *animation
	editing  domain.Side
	buf      []rune
	notice   string
}

func NewLoop(screen tcell.Screen, chime Chime, logger *slog.Logger) *Loop {
	if chime == nil {
		chime = NopChime{}
	}
	return &Loop{
		screen: screen,
		chime:  chime,
		logger: logger,
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		wake: make(chan struct{}, 1),
	}
}

func (l *Loop) enqueue(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// drain runs queued callbacks, including any they queue in turn.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(q) == 0 {
			return
		}
		for _, f := range q {
			f()
		}
	}
}

// Animate eases the drawn rotation to req.ToDeg and calls done once the
// duration has elapsed.
func (l *Loop) Animate(req ports.AnimationRequest, done func()) {
	l.enqueue(func() {
		curve, err := ParseCubicBezier(req.Easing)
		if err != nil {
			l.logger.Warn("unknown easing, using default", "easing", req.Easing, "error", err)
			curve, _ = ParseCubicBezier(domain.SpinEasing)
		}
		l.anim = &animation{req: req, curve: curve, start: l.now(), done: done}
	})
}

// AfterFunc runs f on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) {
	l.afterFunc(d, func() { l.enqueue(f) })
}

// Publish takes wheel events from the service.
func (l *Loop) Publish(_ context.Context, ev ports.Event) {
	l.enqueue(func() { l.apply(ev) })
}

func (l *Loop) apply(ev ports.Event) {
	if ev.WheelID != l.wheelID || ev.State.Revision < l.state.Revision {
		return
	}
	l.state = ev.State
	if l.anim == nil {
		l.rotation = ev.State.RotationDeg
	}
	if ev.Type == ports.EventResultRevealed && ev.State.Outcome != nil {
		l.chime.Play(ev.State.Outcome.Segment.Kind)
	}
}

// advance moves the running animation to time now.
func (l *Loop) advance(now time.Time) {
	a := l.anim
	if a == nil {
		return
	}

	elapsed := now.Sub(a.start)
	if elapsed >= a.req.Duration {
		l.rotation = a.req.ToDeg
		l.anim = nil
		a.done()
		return
	}
	progress := a.curve.At(float64(elapsed) / float64(a.req.Duration))
	l.rotation = a.req.FromDeg + (a.req.ToDeg-a.req.FromDeg)*progress
}

func (l *Loop) attach(ctx context.Context, ctrl Controller, wheelID string) error {
	l.ctrl = ctrl
	l.wheelID = wheelID

	res, err := ctrl.GetWheel(ctx, wheelID)
	if err != nil {
		return fmt.Errorf("load wheel: %w", err)
	}
	l.state = res.State
	l.rotation = res.State.RotationDeg

	cols, _ := l.screen.Size()
	l.resize(ctx, cols)
	return nil
}

// Run drives the wheel until the user quits or ctx is done.
func (l *Loop) Run(ctx context.Context, ctrl Controller, wheelID string) error {
	if err := l.attach(ctx, ctrl, wheelID); err != nil {
		return err
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := l.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if l.handleEvent(ctx, ev) {
				return nil
			}

		case <-l.wake:
			l.drain()

		case <-ticker.C:
			l.drain()
			l.advance(l.now())
			l.draw()
		}
	}
}

// handleEvent reports whether the user asked to quit.
func (l *Loop) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, _ := ev.Size()
		l.resize(ctx, cols)
		l.screen.Sync()
	case *tcell.EventKey:
		if l.editing != "" {
			l.handleEditKey(ctx, ev)
			return false
		}
		return l.handleKey(ctx, ev)
	}
	return false
}

func (l *Loop) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		l.command(ctx, "dismiss", l.ctrl.Dismiss)
	case tcell.KeyEnter:
		l.spin(ctx)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			l.spin(ctx)
		case 'd':
			l.command(ctx, "dismiss", l.ctrl.Dismiss)
		case 'a':
			l.beginEdit(domain.SideA, l.state.EntityA.Name)
		case 'b':
			l.beginEdit(domain.SideB, l.state.EntityB.Name)
		}
	}
	return false
}

func (l *Loop) handleEditKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		l.editing, l.buf = "", nil
	case tcell.KeyEnter:
		name := string(l.buf)
		side := l.editing
		l.editing, l.buf = "", nil
		if _, err := l.ctrl.UpdateEntity(ctx, l.wheelID, side, app.EntityUpdate{Name: &name}); err != nil {
			l.fail("rename", err)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(l.buf) > 0 {
			l.buf = l.buf[:len(l.buf)-1]
		}
	case tcell.KeyRune:
		if len(l.buf) < maxNameLen {
			l.buf = append(l.buf, ev.Rune())
		}
	}
}

func (l *Loop) beginEdit(side domain.Side, current string) {
	l.editing = side
	l.buf = []rune(current)
	l.notice = ""
}

func (l *Loop) spin(ctx context.Context) {
	if l.state.Phase == domain.PhaseRevealed {
		l.command(ctx, "spin again", l.ctrl.SpinAgain)
		return
	}
	l.command(ctx, "spin", l.ctrl.Spin)
}

func (l *Loop) command(ctx context.Context, name string, fn func(context.Context, string) (app.Result, error)) {
	res, err := fn(ctx, l.wheelID)
	if err != nil {
		l.fail(name, err)
		return
	}
	l.notice = ""
	if !res.Accepted {
		l.logger.Debug("command ignored", "command", name, "phase", res.State.Phase)
	}
}

func (l *Loop) resize(ctx context.Context, cols int) {
	if _, err := l.ctrl.Resize(ctx, l.wheelID, cols*cellWidthPx); err != nil {
		l.fail("resize", err)
	}
}

func (l *Loop) fail(op string, err error) {
	l.logger.Error("command failed", "command", op, "error", err)
	l.notice = fmt.Sprintf("%s failed: %v", op, err)
}

func (l *Loop) draw() {
	l.screen.Clear()
	lay := drawWheel(l.screen, l.state, l.rotation)
	for i, line := range statusLines(l.state, l.editing, l.buf, l.notice) {
		drawText(l.screen, 1, lay.rowsUsed+i, line, tcell.StyleDefault)
	}
	l.screen.Show()
}
