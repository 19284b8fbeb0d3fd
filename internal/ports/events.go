package ports

import (
	"context"
	"time"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

// EventType names a wheel lifecycle transition.
type EventType string

const (
	EventWheelCreated    EventType = "wheel_created"
	EventEntitiesChanged EventType = "entities_changed"
	EventGeometryChanged EventType = "geometry_changed"
	EventSpinStarted     EventType = "spin_started"
	EventSpinResolved    EventType = "spin_resolved"
	EventResultRevealed  EventType = "result_revealed"
	EventResultDismissed EventType = "result_dismissed"
	EventWheelDeleted    EventType = "wheel_deleted"
)

// Event is published after every accepted state change.
type Event struct {
	Type      EventType         `json:"type"`
	WheelID   string            `json:"wheel_id"`
	At        time.Time         `json:"at"`
	State     domain.State      `json:"state"`
	Animation *AnimationRequest `json:"animation,omitempty"`
}

// Publisher delivers lifecycle events to presentation surfaces.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Publishers fans an event out to every publisher in order.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev Event) {
	for _, p := range ps {
		p.Publish(ctx, ev)
	}
}
