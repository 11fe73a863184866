package stream

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Timetable plays animations at the times given by cron schedules.
type Timetable struct {
	log    zerolog.Logger
	player Player
	mu     sync.Mutex
	c      *cron.Cron
}

// NewTimetable creates a stopped Timetable.
func NewTimetable(player Player, log zerolog.Logger) *Timetable {
	t := new(Timetable)
	t.log = log.With().Str("component", "timetable").Logger()
	t.player = player
	return t
}

// Apply replaces the running schedules with schedules.
func (t *Timetable) Apply(schedules []CronSchedule) error {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)))
	for _, s := range schedules {
		name := s.Animation
		if _, err := c.AddFunc(s.Cron, func() { t.fire(name) }); err != nil {
			return err
		}
	}

	t.mu.Lock()
	old := t.c
	t.c = c
	t.mu.Unlock()

	if old != nil {
		<-old.Stop().Done()
	}
	c.Start()
	t.log.Info().Int("schedules", len(schedules)).Msg("timetable applied")
	return nil
}

func (t *Timetable) fire(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	if err := t.player.Play(ctx, name); err != nil {
		t.log.Warn().Err(err).Str("animation", name).Msg("scheduled play failed")
		return
	}
	t.log.Info().Str("animation", name).Msg("scheduled play")
}

// Stop halts the schedules and waits for running jobs.
func (t *Timetable) Stop() {
	t.mu.Lock()
	c := t.c
	t.c = nil
	t.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Len returns the number of active schedules.
func (t *Timetable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.c == nil {
		return 0
	}
	return len(t.c.Entries())
}
