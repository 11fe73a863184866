package sched

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidHandle is returned when scheduling a nil, non-comparable or
	// disposed animation.
	ErrInvalidHandle = errors.New("invalid animation handle")

	// ErrAlreadyQueued is returned when the animation is already waiting or
	// playing in the queue.
	ErrAlreadyQueued = errors.New("animation already queued")

	// ErrStalledAnimation is wrapped by StalledError.
	ErrStalledAnimation = errors.New("animation stalled")
)

// StalledError reports an animation that has been playing for longer than
// the scheduler's stall timeout.
type StalledError struct {
	Animation Animation
	Name      string
	Elapsed   time.Duration
}

func (e *StalledError) Error() string {
	return fmt.Sprintf("%v: %s playing for %s", ErrStalledAnimation, e.Name, e.Elapsed.Round(time.Millisecond))
}

func (e *StalledError) Unwrap() error { return ErrStalledAnimation }
