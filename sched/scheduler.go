// Package sched plays animations one at a time, in the order they were
// scheduled.
//
// Animations scheduled from a completion callback are placed directly after
// the animation that just finished, ahead of anything that was already
// waiting, and keep the order they were submitted in.
//
// A Scheduler is not safe for concurrent use. It expects every call, and
// every finished notification, to arrive on the same goroutine.
package sched

import (
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle stage of a queue entry.
type State int

const (
	StateQueued State = iota
	StateRunning
	// StateFinishing covers the window where the entry's completion callback
	// runs. The entry is still at the front of the queue.
	StateFinishing
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateFinishing:
		return "finishing"
	}
	return "unknown"
}

type entry struct {
	id         uuid.UUID
	anim       Animation
	onComplete func()
	state      State
	queuedAt   time.Time
	startedAt  time.Time
}

// EntryInfo describes a queue entry.
type EntryInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	QueuedAt  time.Time  `json:"queuedAt"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// Scheduler serialises animation playback.
type Scheduler struct {
	queue []*entry

	// cursor is the insertion index used while a completion callback runs.
	// Zero means append.
	cursor int

	log          zerolog.Logger
	now          func() time.Time
	stallTimeout time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for queue events.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithStallTimeout enables CheckStalled. Zero disables it.
func WithStallTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.stallTimeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates an idle Scheduler.
func New(opts ...Option) *Scheduler {
	s := new(Scheduler)
	s.log = zerolog.Nop()
	s.now = time.Now
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues anim and starts it straight away if nothing is playing.
// onComplete may be nil. It runs after anim finishes and before the next
// animation starts, and it may call Schedule itself.
func (s *Scheduler) Schedule(anim Animation, onComplete func()) error {
	if !validHandle(anim) {
		return ErrInvalidHandle
	}
	if s.live(anim) {
		return ErrAlreadyQueued
	}

	e := &entry{
		id:         uuid.New(),
		anim:       anim,
		onComplete: onComplete,
		state:      StateQueued,
		queuedAt:   s.now(),
	}

	if s.cursor == 0 {
		s.queue = append(s.queue, e)
	} else {
		s.queue = slices.Insert(s.queue, s.cursor, e)
		s.cursor++
	}

	s.log.Debug().
		Str("animation", nameOf(anim)).
		Str("id", e.id.String()).
		Bool("nested", s.cursor != 0).
		Int("depth", len(s.queue)).
		Msg("scheduled")

	s.progress()
	return nil
}

// live reports whether anim is waiting or playing. The entry whose callback
// is running does not count, so an animation can queue itself again.
func (s *Scheduler) live(anim Animation) bool {
	for _, e := range s.queue {
		if e.anim == anim && e.state != StateFinishing {
			return true
		}
	}
	return false
}

func (s *Scheduler) progress() {
	if len(s.queue) == 0 {
		return
	}

	front := s.queue[0]
	if front.state != StateQueued {
		return
	}
	if front.anim.Running() {
		s.log.Debug().Str("animation", nameOf(front.anim)).Msg("front already running, deferring")
		return
	}

	front.state = StateRunning
	front.startedAt = s.now()

	// Subscribe before starting so an animation that completes inside
	// Start still advances the queue.
	front.anim.SetOnFinished(func() { s.finish(front) })

	s.log.Debug().Str("animation", nameOf(front.anim)).Str("id", front.id.String()).Msg("starting")
	front.anim.Start()
}

func (s *Scheduler) finish(e *entry) {
	if len(s.queue) == 0 || s.queue[0] != e || e.state != StateRunning {
		s.log.Warn().
			Str("animation", nameOf(e.anim)).
			Str("id", e.id.String()).
			Str("state", e.state.String()).
			Msg("ignoring spurious finished signal")
		return
	}

	s.log.Debug().
		Str("animation", nameOf(e.anim)).
		Str("id", e.id.String()).
		Dur("played", s.now().Sub(e.startedAt)).
		Msg("finished")

	e.state = StateFinishing
	if e.onComplete != nil {
		s.complete(e)
	}

	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.progress()
}

// complete runs the entry's callback with the cursor pointing just past it.
func (s *Scheduler) complete(e *entry) {
	s.cursor = 1
	defer func() {
		s.cursor = 0
		if r := recover(); r != nil {
			s.log.Error().
				Str("animation", nameOf(e.anim)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("completion callback panicked")
		}
	}()
	e.onComplete()
}

// Len returns the number of queue entries, including the one playing.
func (s *Scheduler) Len() int { return len(s.queue) }

// Idle reports whether the queue is empty.
func (s *Scheduler) Idle() bool { return len(s.queue) == 0 }

// Current returns the animation the scheduler started and is waiting on.
func (s *Scheduler) Current() (Animation, bool) {
	if len(s.queue) == 0 || s.queue[0].state != StateRunning {
		return nil, false
	}
	return s.queue[0].anim, true
}

// Snapshot describes the queue, front first.
func (s *Scheduler) Snapshot() []EntryInfo {
	out := make([]EntryInfo, 0, len(s.queue))
	for _, e := range s.queue {
		info := EntryInfo{
			ID:       e.id.String(),
			Name:     nameOf(e.anim),
			State:    e.state.String(),
			QueuedAt: e.queuedAt,
		}
		if e.state != StateQueued {
			started := e.startedAt
			info.StartedAt = &started
		}
		out = append(out, info)
	}
	return out
}

// CheckStalled returns a *StalledError when the playing animation has run
// longer than the stall timeout. It never changes the queue.
func (s *Scheduler) CheckStalled() error {
	if s.stallTimeout <= 0 || len(s.queue) == 0 {
		return nil
	}

	front := s.queue[0]
	if front.state != StateRunning {
		return nil
	}

	elapsed := s.now().Sub(front.startedAt)
	if elapsed <= s.stallTimeout {
		return nil
	}

	return &StalledError{Animation: front.anim, Name: nameOf(front.anim), Elapsed: elapsed}
}
