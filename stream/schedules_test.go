package stream

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTimetableApply(t *testing.T) {
	tt := NewTimetable(&fakePlayer{}, zerolog.Nop())
	defer tt.Stop()

	err := tt.Apply([]CronSchedule{
		{Cron: "0 18 * * *", Animation: "a"},
		{Cron: "@hourly", Animation: "b"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if tt.Len() != 2 {
		t.Fatalf("expected 2 schedules, got %d", tt.Len())
	}

	if err := tt.Apply([]CronSchedule{{Cron: "@daily", Animation: "a"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if tt.Len() != 1 {
		t.Fatalf("expected schedules to be replaced, got %d", tt.Len())
	}
}

func TestTimetableRejectsBadCron(t *testing.T) {
	tt := NewTimetable(&fakePlayer{}, zerolog.Nop())
	defer tt.Stop()

	if err := tt.Apply([]CronSchedule{{Cron: "every tuesday", Animation: "a"}}); err == nil {
		t.Fatalf("expected a parse error")
	}
	if tt.Len() != 0 {
		t.Fatalf("a failed apply must not install schedules")
	}
}

func TestTimetableFire(t *testing.T) {
	p := &fakePlayer{}
	tt := NewTimetable(p, zerolog.Nop())
	tt.fire("a")
	if len(p.played) != 1 || p.played[0] != "a" {
		t.Fatalf("expected a played, got %v", p.played)
	}
}

func TestWatchConfigReloads(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan Config, 1)
	go func() {
		_ = WatchConfig(ctx, path, zerolog.Nop(), func(cfg Config) {
			select {
			case changed <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	updated := sampleConfig + "  - cron: \"@daily\"\n    animation: sparkle\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-changed:
		if len(cfg.Schedules) != 2 {
			t.Fatalf("expected the reloaded config, got %d schedules", len(cfg.Schedules))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("config change not noticed")
	}
}
