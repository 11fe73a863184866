package stream

import (
	"time"

	"github.com/matt-g-everett/ledseq/sched"
)

var _ sched.Animation = (*Clip)(nil)

// A Clip plays a Renderer for a fixed duration, or until a FiniteRenderer is
// done. It is driven by the render loop through CalculateFrame and fires its
// finished notification from there.
type Clip struct {
	name     string
	renderer Renderer
	duration time.Duration

	running    bool
	started    bool
	startMs    int64
	onFinished func()
}

// NewClip creates a Clip. A zero duration plays until the renderer is done or
// the clip is stopped.
func NewClip(name string, renderer Renderer, duration time.Duration) *Clip {
	c := new(Clip)
	c.name = name
	c.renderer = renderer
	c.duration = duration
	return c
}

func (c *Clip) String() string { return c.name }

// Start begins playback. Timing starts at the next rendered frame.
func (c *Clip) Start() {
	c.running = true
	c.started = false
}

// Stop aborts playback and fires the finished notification.
func (c *Clip) Stop() {
	if c.running {
		c.end()
	}
}

// Running reports whether the clip is playing.
func (c *Clip) Running() bool { return c.running }

// SetOnFinished replaces the finished notification.
func (c *Clip) SetOnFinished(f func()) { c.onFinished = f }

// CalculateFrame renders the next frame. The frame that takes the clip past
// its end is still returned.
func (c *Clip) CalculateFrame(runtimeMs int64) *Frame {
	if !c.started {
		c.startMs = runtimeMs
		c.started = true
	}

	f := c.renderer.CalculateFrame(runtimeMs)
	if c.running && c.expired(runtimeMs) {
		c.end()
	}

	return f
}

func (c *Clip) expired(runtimeMs int64) bool {
	if fr, ok := c.renderer.(FiniteRenderer); ok && fr.Done() {
		return true
	}

	elapsed := time.Duration(runtimeMs-c.startMs) * time.Millisecond
	return c.duration > 0 && elapsed >= c.duration
}

func (c *Clip) end() {
	c.running = false
	if c.onFinished != nil {
		c.onFinished()
	}
}
