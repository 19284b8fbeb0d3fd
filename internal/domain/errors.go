package domain

import "errors"

var (
	ErrSpinInProgress   = errors.New("spin already in progress")
	ErrEntitiesNotReady = errors.New("both entity names must be set")
	ErrRevealPending    = errors.New("outcome not revealed yet")
	ErrNoSpinInFlight   = errors.New("no spin in flight")
	ErrStaleSpin        = errors.New("signal for a superseded spin")
	ErrNothingToDismiss = errors.New("no revealed outcome to dismiss")
	ErrInvalidWidth     = errors.New("container width must be positive")
	ErrInvalidSide      = errors.New("side must be a or b")
	ErrWheelNotFound    = errors.New("wheel not found")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrTooManyWheels    = errors.New("wheel limit reached")
)

// IsRejection reports whether err is a lifecycle rejection that callers
// absorb as a no-op rather than surface.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrSpinInProgress),
		errors.Is(err, ErrEntitiesNotReady),
		errors.Is(err, ErrRevealPending),
		errors.Is(err, ErrNoSpinInFlight),
		errors.Is(err, ErrStaleSpin),
		errors.Is(err, ErrNothingToDismiss),
		errors.Is(err, ErrInvalidWidth):
		return true
	default:
		return false
	}
}
