package stream

import (
	"errors"
	"fmt"

	"github.com/matt-g-everett/ledseq/sched"
	"github.com/rs/zerolog"
)

// ErrNothingPlaying is returned by Skip when no clip is playing.
var ErrNothingPlaying = errors.New("nothing playing")

// Controller that manages animations. It queues clips on a Scheduler and
// renders whichever one is playing, crossfading between clips. A Controller
// must only be used from the render loop goroutine.
type Controller struct {
	log       zerolog.Logger
	scheduler *sched.Scheduler
	library   *Library
	numPixels int

	playlist    PlaylistConfig
	playlistIdx int

	current             sched.Animation
	last                *Frame
	fadeFrom            *Frame
	transition          float64
	transitionIncrement float64
}

// NewController creates a Controller for cfg.
func NewController(cfg Config, log zerolog.Logger) (*Controller, error) {
	library, err := NewLibrary(cfg.Display.Pixels, cfg.Animations)
	if err != nil {
		return nil, err
	}

	c := new(Controller)
	c.log = log.With().Str("component", "controller").Logger()
	c.scheduler = sched.New(
		sched.WithLogger(log.With().Str("component", "scheduler").Logger()),
		sched.WithStallTimeout(cfg.Scheduler.StallTimeout),
	)
	c.library = library
	c.numPixels = cfg.Display.Pixels
	c.playlist = cfg.Playlist
	c.last = NewFrame(c.numPixels)

	frames := cfg.Display.Transition.Seconds() * cfg.Display.FrameRate
	if frames < 1 {
		c.transitionIncrement = 1
	} else {
		c.transitionIncrement = 1.0 / frames
	}

	return c, nil
}

// Play queues a new clip of the named animation. Its Then children are
// queued from its completion callback so they play straight after it.
func (c *Controller) Play(name string) error {
	clip, err := c.library.Build(name)
	if err != nil {
		return err
	}

	def, _ := c.library.Lookup(name)
	if err := c.scheduler.Schedule(clip, c.children(def)); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	c.log.Info().Str("animation", name).Int("queued", c.scheduler.Len()).Msg("animation queued")
	return nil
}

func (c *Controller) children(def AnimationDef) func() {
	if len(def.Then) == 0 {
		return nil
	}

	// Children are built from the library in use when the parent finishes
	return func() {
		for _, child := range def.Then {
			if err := c.Play(child); err != nil {
				c.log.Warn().Err(err).Str("parent", def.Name).Str("animation", child).Msg("child not queued")
			}
		}
	}
}

// Skip stops the playing clip, which moves the queue on.
func (c *Controller) Skip() error {
	cur, ok := c.scheduler.Current()
	if !ok {
		return ErrNothingPlaying
	}

	c.log.Info().Str("animation", fmt.Sprint(cur)).Msg("skipping")
	cur.Stop()
	return nil
}

// Snapshot describes the queue.
func (c *Controller) Snapshot() []sched.EntryInfo {
	return c.scheduler.Snapshot()
}

// Reload swaps in the animations and playlist of cfg. Queued clips are kept.
func (c *Controller) Reload(cfg Config) error {
	library, err := NewLibrary(c.numPixels, cfg.Animations)
	if err != nil {
		return err
	}

	c.library = library
	c.playlist = cfg.Playlist
	c.playlistIdx = 0
	c.log.Info().Strs("animations", library.Names()).Msg("library reloaded")
	return nil
}

// nextFromPlaylist queues the next playlist entry. It reports false when
// the playlist is exhausted.
func (c *Controller) nextFromPlaylist() bool {
	names := c.playlist.Animations
	if len(names) == 0 {
		return false
	}
	if c.playlistIdx >= len(names) {
		if !c.playlist.Loop {
			return false
		}
		c.playlistIdx = 0
	}

	name := names[c.playlistIdx]
	c.playlistIdx++
	if err := c.Play(name); err != nil {
		c.log.Warn().Err(err).Str("animation", name).Msg("playlist entry not queued")
		return false
	}
	return true
}

// Tick advances playback and renders the frame for runtimeMs.
func (c *Controller) Tick(runtimeMs int64) *Frame {
	if err := c.scheduler.CheckStalled(); err != nil {
		var stalled *sched.StalledError
		if errors.As(err, &stalled) {
			c.log.Warn().Err(err).Msg("stopping stalled animation")
			stalled.Animation.Stop()
		}
	}

	if c.scheduler.Idle() {
		c.nextFromPlaylist()
	}

	return c.CalculateFrame(runtimeMs)
}

// CalculateFrame renders the playing clip, or black when idle.
func (c *Controller) CalculateFrame(runtimeMs int64) *Frame {
	cur, _ := c.scheduler.Current()
	if cur != c.current {
		c.current = cur
		c.fadeFrom = c.last
		c.transition = 0
	}

	var f *Frame
	if r, ok := cur.(Renderer); ok {
		f = r.CalculateFrame(runtimeMs)
	} else {
		f = NewFrame(c.numPixels)
	}

	if c.fadeFrom != nil {
		c.transition += c.transitionIncrement
		if c.transition >= 1.0 {
			c.fadeFrom = nil
			c.transition = 0
		} else {
			f = c.fadeFrom.InterpolateFrame(f, c.transition)
		}
	}

	c.last = f
	return f
}
