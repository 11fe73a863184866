package stream

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matt-g-everett/ledseq/sched"
	"github.com/rs/zerolog"
)

func testConfig() Config {
	var cfg Config
	cfg.Mqtt.URL = "tcp://localhost:1883"
	cfg.Display.Pixels = 16
	cfg.Display.FrameRate = 10
	cfg.Display.Transition = 200 * time.Millisecond
	cfg.Animations = []AnimationDef{
		{Name: "a", Type: TypeTwinkle, Duration: 100 * time.Millisecond, Then: []string{"c1", "c2"}},
		{Name: "b", Type: TypeGradient, Duration: 100 * time.Millisecond, Then: []string{"d"}},
		{Name: "c1", Type: TypeStreak, Duration: 100 * time.Millisecond},
		{Name: "c2", Type: TypeStripes, Duration: 100 * time.Millisecond},
		{Name: "d", Type: TypeSweep, Step: 10 * time.Millisecond},
		{Name: "long", Type: TypeGradient, Duration: time.Hour},
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := NewController(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func queueNames(c *Controller) string {
	var names []string
	for _, e := range c.Snapshot() {
		names = append(names, e.Name)
	}
	return strings.Join(names, ",")
}

func currentName(c *Controller) string {
	cur, ok := c.scheduler.Current()
	if !ok {
		return ""
	}
	return cur.(*Clip).String()
}

// playOut ticks until the current clip changes or the queue empties.
func playOut(t *testing.T, c *Controller, ms *int64) {
	t.Helper()
	before := c.Snapshot()
	for i := 0; i < 1000; i++ {
		*ms += 10
		c.CalculateFrame(*ms)
		after := c.Snapshot()
		if len(after) == 0 || len(before) == 0 || after[0].ID != before[0].ID {
			return
		}
	}
	t.Fatalf("clip never finished")
}

func TestControllerChildrenPlayBeforeQueued(t *testing.T) {
	c := newTestController(t, testConfig())

	if err := c.Play("a"); err != nil {
		t.Fatalf("Play a: %v", err)
	}
	if err := c.Play("b"); err != nil {
		t.Fatalf("Play b: %v", err)
	}
	if got := queueNames(c); got != "a,b" {
		t.Fatalf("queue = %q", got)
	}

	var ms int64
	c.CalculateFrame(ms)

	var order []string
	for !c.scheduler.Idle() {
		order = append(order, currentName(c))
		playOut(t, c, &ms)
	}

	if got := strings.Join(order, ","); got != "a,c1,c2,b,d" {
		t.Fatalf("play order = %q, want a,c1,c2,b,d", got)
	}
}

func TestControllerPlayUnknown(t *testing.T) {
	c := newTestController(t, testConfig())
	if err := c.Play("nope"); !errors.Is(err, ErrUnknownAnimation) {
		t.Fatalf("expected ErrUnknownAnimation, got %v", err)
	}
}

func TestControllerPlaySameNameTwice(t *testing.T) {
	c := newTestController(t, testConfig())
	if err := c.Play("long"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := c.Play("long"); err != nil {
		t.Fatalf("second Play of the same animation should get its own clip: %v", err)
	}
	if got := queueNames(c); got != "long,long" {
		t.Fatalf("queue = %q", got)
	}
}

func TestControllerSkip(t *testing.T) {
	c := newTestController(t, testConfig())

	if err := c.Skip(); !errors.Is(err, ErrNothingPlaying) {
		t.Fatalf("expected ErrNothingPlaying, got %v", err)
	}

	_ = c.Play("long")
	_ = c.Play("b")
	if err := c.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if got := currentName(c); got != "b" {
		t.Fatalf("expected b playing after skip, got %q", got)
	}
}

func TestControllerPlaylist(t *testing.T) {
	cfg := testConfig()
	cfg.Playlist = PlaylistConfig{Animations: []string{"c1", "c2"}}
	c := newTestController(t, cfg)

	var ms int64
	c.Tick(ms)
	if got := currentName(c); got != "c1" {
		t.Fatalf("expected c1 from the playlist, got %q", got)
	}

	_ = c.Play("b")
	var order []string
	for i := 0; i < 200; i++ {
		name := currentName(c)
		if name != "" && (len(order) == 0 || order[len(order)-1] != name) {
			order = append(order, name)
		}
		ms += 10
		c.Tick(ms)
	}

	// b was queued while c1 played, so it goes before the next playlist entry
	if got := strings.Join(order, ","); got != "c1,b,d,c2" {
		t.Fatalf("play order = %q", got)
	}

	// Exhausted without loop
	c.Tick(ms + 10)
	if !c.scheduler.Idle() {
		t.Fatalf("expected idle after the playlist ran out")
	}
}

func TestControllerPlaylistLoops(t *testing.T) {
	cfg := testConfig()
	cfg.Playlist = PlaylistConfig{Animations: []string{"c1"}, Loop: true}
	c := newTestController(t, cfg)

	var ms int64
	starts := 0
	var last sched.Animation
	for i := 0; i < 100; i++ {
		c.Tick(ms)
		if cur, ok := c.scheduler.Current(); ok && cur != last {
			starts++
			last = cur
		}
		ms += 10
	}
	if starts < 3 {
		t.Fatalf("expected the playlist to loop, saw %d plays", starts)
	}
}

func TestControllerStopsStalledClip(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.StallTimeout = time.Millisecond
	c := newTestController(t, cfg)

	_ = c.Play("long")
	_ = c.Play("c1")
	time.Sleep(5 * time.Millisecond)

	c.Tick(0)
	if got := currentName(c); got != "c1" {
		t.Fatalf("expected stalled clip to be stopped, playing %q", got)
	}
}

func TestControllerReload(t *testing.T) {
	c := newTestController(t, testConfig())
	_ = c.Play("long")

	cfg := testConfig()
	cfg.Animations = append(cfg.Animations, AnimationDef{Name: "extra", Type: TypeTwinkle, Duration: time.Second})
	if err := c.Reload(cfg); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := c.Play("extra"); err != nil {
		t.Fatalf("Play after reload: %v", err)
	}
	if got := queueNames(c); got != "long,extra" {
		t.Fatalf("reload should keep the queue, got %q", got)
	}
}

func TestControllerIdleFrameIsBlack(t *testing.T) {
	c := newTestController(t, testConfig())
	f := c.CalculateFrame(0)
	if f.Len() != 16 {
		t.Fatalf("expected 16 pixels, got %d", f.Len())
	}
	data, _ := f.MarshalBinary()
	for _, b := range data[2:] {
		if b != 0 {
			t.Fatalf("expected a black idle frame")
		}
	}
}
