package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

// Deps are the collaborators a WheelService drives.
type Deps struct {
	Presets   ports.PresetStore
	Animator  ports.Animator
	Scheduler ports.Scheduler
	Publisher ports.Publisher
	RNG       domain.RNG
	Logger    *slog.Logger
}

// Options tune a WheelService. Zero values fall back to the defaults.
// IdleTTL of zero keeps wheels until they are deleted.
type Options struct {
	DefaultPreset string
	MaxWheels     int
	SpinDuration  time.Duration
	RevealDelay   time.Duration
	IdleTTL       time.Duration
	NewID         func() string
	Now           func() time.Time
}

// EntityUpdate changes an entity's name and/or color. Nil fields are kept.
type EntityUpdate struct {
	Name  *string
	Color *string
}

// Result is returned by every wheel command. Accepted is false when the
// state machine absorbed the command as a no-op.
type Result struct {
	WheelID  string
	State    domain.State
	Accepted bool
}

type session struct {
	wheel   *domain.Wheel
	touched time.Time
}

// change is what an accepted mutation publishes.
type change struct {
	event ports.EventType
	anim  *ports.AnimationRequest
}

type pendingEvent struct {
	ctx context.Context
	ev  ports.Event
}

// WheelService owns wheel sessions and sequences their spin lifecycle:
// animation completion resolves the outcome, then a second timer reveals it.
//
// Events are queued while the wheel lock is held and delivered by a single
// flushing goroutine at a time, so subscribers see them in mutation order.
type WheelService struct {
	mu     sync.Mutex
	wheels map[string]*session

	pubMu    sync.Mutex
	outbox   []pendingEvent
	flushing bool

	presets   ports.PresetStore
	animator  ports.Animator
	scheduler ports.Scheduler
	publisher ports.Publisher
	rng       domain.RNG
	logger    *slog.Logger
	opts      Options
}

func NewWheelService(deps Deps, opts Options) *WheelService {
	if opts.DefaultPreset == "" {
		opts.DefaultPreset = "teams"
	}
	if opts.SpinDuration <= 0 {
		opts.SpinDuration = domain.SpinDuration
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = domain.RevealDelay
	}
	if opts.IdleTTL < 0 {
		opts.IdleTTL = 0
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = ports.Publishers{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &WheelService{
		wheels:    make(map[string]*session),
		presets:   deps.Presets,
		animator:  deps.Animator,
		scheduler: deps.Scheduler,
		publisher: deps.Publisher,
		rng:       deps.RNG,
		logger:    deps.Logger,
		opts:      opts,
	}
}

// Presets lists the available entity presets.
func (s *WheelService) Presets(ctx context.Context) ([]domain.Preset, error) {
	ps, err := s.presets.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return ps, nil
}

// CreateWheel starts a new idle wheel seeded with a preset's placeholders.
func (s *WheelService) CreateWheel(ctx context.Context, presetID string) (Result, error) {
	if presetID == "" {
		presetID = s.opts.DefaultPreset
	}
	preset, err := s.presets.GetPreset(ctx, presetID)
	if err != nil {
		return Result{}, fmt.Errorf("get preset: %w", err)
	}

	s.mu.Lock()
	now := s.opts.Now()
	evicted := 0
	if s.opts.MaxWheels > 0 && len(s.wheels) >= s.opts.MaxWheels {
		evicted = s.evictLocked(ctx, now)
	}
	if s.opts.MaxWheels > 0 && len(s.wheels) >= s.opts.MaxWheels {
		s.mu.Unlock()
		s.flush()
		return Result{}, domain.ErrTooManyWheels
	}
	id := s.opts.NewID()
	w := domain.NewWheel(preset)
	w.SetSpinDuration(s.opts.SpinDuration)
	s.wheels[id] = &session{wheel: w, touched: now}
	st := w.State()
	s.enqueue(ctx, ports.EventWheelCreated, id, st, nil)
	s.mu.Unlock()
	s.flush()

	if evicted > 0 {
		s.logger.InfoContext(ctx, "idle wheels evicted", "count", evicted)
	}
	s.logger.InfoContext(ctx, "wheel created", "wheel_id", id, "preset", presetID)
	return Result{WheelID: id, State: st, Accepted: true}, nil
}

// GetWheel returns the current state of a wheel. Reading a wheel counts as
// activity for idle eviction.
func (s *WheelService) GetWheel(_ context.Context, id string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.wheels[id]
	if !ok {
		return Result{}, domain.ErrWheelNotFound
	}
	sess.touched = s.opts.Now()
	return Result{WheelID: id, State: sess.wheel.State(), Accepted: true}, nil
}

// DeleteWheel drops a wheel. Timers still pending for it become no-ops.
func (s *WheelService) DeleteWheel(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.wheels[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrWheelNotFound
	}
	delete(s.wheels, id)
	s.enqueue(ctx, ports.EventWheelDeleted, id, sess.wheel.State(), nil)
	s.mu.Unlock()
	s.flush()

	s.logger.InfoContext(ctx, "wheel deleted", "wheel_id", id)
	return nil
}

// EvictIdle deletes wheels untouched for longer than the idle TTL and
// returns how many went. Wheels mid-spin or awaiting their reveal stay.
func (s *WheelService) EvictIdle(ctx context.Context) int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	n := s.evictLocked(ctx, s.opts.Now())
	s.mu.Unlock()
	s.flush()

	if n > 0 {
		s.logger.InfoContext(ctx, "idle wheels evicted", "count", n)
	}
	return n
}

func (s *WheelService) evictLocked(ctx context.Context, now time.Time) int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	n := 0
	for id, sess := range s.wheels {
		if now.Sub(sess.touched) < s.opts.IdleTTL {
			continue
		}
		switch sess.wheel.Phase() {
		case domain.PhaseSpinning, domain.PhaseResolved:
			continue
		}
		delete(s.wheels, id)
		s.enqueue(ctx, ports.EventWheelDeleted, id, sess.wheel.State(), nil)
		n++
	}
	return n
}

// UpdateEntity renames and/or recolors one side. Allowed while spinning;
// the in-flight spin keeps its snapshot.
func (s *WheelService) UpdateEntity(ctx context.Context, id string, side domain.Side, upd EntityUpdate) (Result, error) {
	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		if upd.Name != nil {
			if err := w.SetName(side, *upd.Name); err != nil {
				return change{}, err
			}
		}
		if upd.Color != nil {
			if err := w.SetColor(side, *upd.Color); err != nil {
				return change{}, err
			}
		}
		return change{event: ports.EventEntitiesChanged}, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("update entity: %w", err)
	}
	return res, nil
}

// Resize feeds a container width report into the geometry engine.
// Non-positive widths are ignored.
func (s *WheelService) Resize(ctx context.Context, id string, width int) (Result, error) {
	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		_, err := w.Resize(width)
		return change{event: ports.EventGeometryChanged}, err
	})
	if err != nil {
		return Result{}, err
	}
	if !res.Accepted {
		s.logger.DebugContext(ctx, "resize ignored", "wheel_id", id, "width", width)
	}
	return res, nil
}

// Spin starts a spin if the wheel accepts one. A spin already in flight,
// a pending reveal or placeholder names make this a no-op.
func (s *WheelService) Spin(ctx context.Context, id string) (Result, error) {
	var req ports.AnimationRequest
	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		spin, err := w.StartSpin(s.rng)
		if err != nil {
			return change{}, err
		}
		req = ports.AnimationRequest{
			WheelID:    id,
			Generation: spin.Generation,
			FromDeg:    spin.FromDeg,
			ToDeg:      spin.TargetDeg,
			Duration:   spin.Duration,
			DurationMS: spin.DurationMS,
			Easing:     spin.Easing,
		}
		anim := req
		return change{event: ports.EventSpinStarted, anim: &anim}, nil
	})
	if err != nil {
		return Result{}, err
	}
	if !res.Accepted {
		s.logger.DebugContext(ctx, "spin ignored", "wheel_id", id, "phase", res.State.Phase)
		return res, nil
	}

	s.logger.InfoContext(ctx, "spin started",
		"wheel_id", id,
		"generation", req.Generation,
		"from_deg", req.FromDeg,
		"target_deg", req.ToDeg,
	)
	gen := req.Generation
	s.animator.Animate(req, func() { s.completeSpin(id, gen) })
	return res, nil
}

// SpinAgain is the presentation surface's entry point for re-spinning from
// a revealed outcome. It re-enters Spin directly.
func (s *WheelService) SpinAgain(ctx context.Context, id string) (Result, error) {
	return s.Spin(ctx, id)
}

// Dismiss closes a revealed outcome; the wheel keeps its rotation.
func (s *WheelService) Dismiss(ctx context.Context, id string) (Result, error) {
	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		return change{event: ports.EventResultDismissed}, w.Dismiss()
	})
	if err != nil {
		return Result{}, err
	}
	if !res.Accepted {
		s.logger.DebugContext(ctx, "dismiss ignored", "wheel_id", id, "phase", res.State.Phase)
	}
	return res, nil
}

// completeSpin runs when the animator signals the end of generation gen.
func (s *WheelService) completeSpin(id string, gen uint64) {
	ctx := context.Background()

	var out domain.Outcome
	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		var err error
		out, err = w.Complete(gen)
		return change{event: ports.EventSpinResolved}, err
	})
	if err != nil || !res.Accepted {
		s.logger.DebugContext(ctx, "completion ignored", "wheel_id", id, "generation", gen, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "spin resolved",
		"wheel_id", id,
		"generation", gen,
		"normalized_deg", out.NormalizedDeg,
		"segment", out.Segment.Kind,
	)
	s.scheduler.AfterFunc(s.opts.RevealDelay, func() { s.revealOutcome(id, gen) })
}

// revealOutcome runs once the cosmetic delay after resolution has passed.
func (s *WheelService) revealOutcome(id string, gen uint64) {
	ctx := context.Background()

	res, err := s.mutate(ctx, id, func(w *domain.Wheel) (change, error) {
		_, err := w.Reveal(gen)
		return change{event: ports.EventResultRevealed}, err
	})
	if err != nil || !res.Accepted {
		s.logger.DebugContext(ctx, "reveal ignored", "wheel_id", id, "generation", gen, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "result revealed", "wheel_id", id, "generation", gen, "label", res.State.Outcome.Segment.Label)
}

// mutate applies fn to a wheel under the lock and queues the resulting
// event before the lock is released. Lifecycle rejections come back as an
// unaccepted Result rather than an error.
func (s *WheelService) mutate(ctx context.Context, id string, fn func(w *domain.Wheel) (change, error)) (Result, error) {
	s.mu.Lock()
	sess, ok := s.wheels[id]
	if !ok {
		s.mu.Unlock()
		return Result{}, domain.ErrWheelNotFound
	}

	c, err := fn(sess.wheel)
	if err != nil && !domain.IsRejection(err) {
		s.mu.Unlock()
		return Result{}, err
	}
	res := Result{WheelID: id, State: sess.wheel.State(), Accepted: err == nil}
	sess.touched = s.opts.Now()
	if res.Accepted && c.event != "" {
		s.enqueue(ctx, c.event, id, res.State, c.anim)
	}
	s.mu.Unlock()

	s.flush()
	return res, nil
}

// enqueue must be called with s.mu held.
func (s *WheelService) enqueue(ctx context.Context, typ ports.EventType, id string, st domain.State, anim *ports.AnimationRequest) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.outbox = append(s.outbox, pendingEvent{
		ctx: context.WithoutCancel(ctx),
		ev: ports.Event{
			Type:      typ,
			WheelID:   id,
			At:        s.opts.Now(),
			State:     st,
			Animation: anim,
		},
	})
}

// flush delivers queued events in order. A caller that finds another
// goroutine already flushing leaves its events to that goroutine.
func (s *WheelService) flush() {
	s.pubMu.Lock()
	if s.flushing {
		s.pubMu.Unlock()
		return
	}
	s.flushing = true
	for len(s.outbox) > 0 {
		next := s.outbox[0]
		s.outbox[0] = pendingEvent{}
		s.outbox = s.outbox[1:]
		s.pubMu.Unlock()

		s.publisher.Publish(next.ctx, next.ev)

		s.pubMu.Lock()
	}
	s.outbox = nil
	s.flushing = false
	s.pubMu.Unlock()
}
