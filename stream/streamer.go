package stream

import (
	"context"
	"errors"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledseq/sched"
	"github.com/rs/zerolog"
)

// ErrStopped is returned when the render loop has exited.
var ErrStopped = errors.New("streamer stopped")

// Streamer that streams RGB data frames to an ledrx device. Its render loop
// owns the Controller; other goroutines reach it through Do and Call.
type Streamer struct {
	log           zerolog.Logger
	controller    *Controller
	publish       func(payload []byte) error
	frameInterval time.Duration
	ops           chan func()
	done          chan struct{}
}

// NewStreamer creates a Streamer publishing frames to the stream topic.
func NewStreamer(cfg Config, client mqtt.Client, controller *Controller, log zerolog.Logger) *Streamer {
	topic := cfg.Mqtt.Topics.Stream
	publish := func(payload []byte) error {
		token := client.Publish(topic, 0, false, payload)
		token.Wait()
		return token.Error()
	}
	return newStreamer(controller, publish, cfg.Display.FrameInterval(), log)
}

func newStreamer(controller *Controller, publish func([]byte) error, frameInterval time.Duration, log zerolog.Logger) *Streamer {
	s := new(Streamer)
	s.log = log.With().Str("component", "streamer").Logger()
	s.controller = controller
	s.publish = publish
	s.frameInterval = frameInterval
	s.ops = make(chan func(), 16)
	s.done = make(chan struct{})
	return s
}

// Do hands fn to the render loop without waiting for it to run.
func (s *Streamer) Do(ctx context.Context, fn func()) error {
	select {
	case s.ops <- fn:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the render loop and waits for it to return.
func (s *Streamer) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := s.Do(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play queues the named animation.
func (s *Streamer) Play(ctx context.Context, name string) error {
	var err error
	if callErr := s.Call(ctx, func() { err = s.controller.Play(name) }); callErr != nil {
		return callErr
	}
	return err
}

// Skip stops the playing animation.
func (s *Streamer) Skip(ctx context.Context) error {
	var err error
	if callErr := s.Call(ctx, func() { err = s.controller.Skip() }); callErr != nil {
		return callErr
	}
	return err
}

// Snapshot describes the queue.
func (s *Streamer) Snapshot(ctx context.Context) ([]sched.EntryInfo, error) {
	var out []sched.EntryInfo
	if err := s.Call(ctx, func() { out = s.controller.Snapshot() }); err != nil {
		return nil, err
	}
	return out, nil
}

// Reload swaps the controller's animations for those in cfg.
func (s *Streamer) Reload(ctx context.Context, cfg Config) error {
	var err error
	if callErr := s.Call(ctx, func() { err = s.controller.Reload(cfg) }); callErr != nil {
		return callErr
	}
	return err
}

// SendFrame renders the frame for runtimeMs and publishes it.
func (s *Streamer) SendFrame(runtimeMs int64) {
	f := s.controller.Tick(runtimeMs)
	b, _ := f.MarshalBinary()
	if err := s.publish(b); err != nil {
		s.log.Warn().Err(err).Msg("publish frame failed")
	}
}

// Run causes the Streamer to send Frames continuously until ctx is done.
func (s *Streamer) Run(ctx context.Context) error {
	defer close(s.done)

	start := time.Now()
	publishTimer := time.NewTicker(s.frameInterval)
	defer publishTimer.Stop()

	s.log.Info().Dur("interval", s.frameInterval).Msg("streaming")
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.ops:
			fn()
		case now := <-publishTimer.C:
			s.SendFrame(now.Sub(start).Milliseconds())
		}
	}
}
