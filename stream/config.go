package stream

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"
)

// Config is the YAML configuration of the sequencer.
type Config struct {
	Mqtt       MqttConfig      `yaml:"mqtt"`
	Display    DisplayConfig   `yaml:"display"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
	Control    ControlConfig   `yaml:"control"`
	HTTP       HTTPConfig      `yaml:"http"`
	Log        LogConfig       `yaml:"log"`
	Animations []AnimationDef  `yaml:"animations"`
	Playlist   PlaylistConfig  `yaml:"playlist"`
	Schedules  []CronSchedule  `yaml:"schedules"`
}

type MqttConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"clientID"`
	Topics   struct {
		Stream  string `yaml:"stream"`
		Control string `yaml:"control"`
		Status  string `yaml:"status"`
	} `yaml:"topics"`
}

type DisplayConfig struct {
	Pixels     int           `yaml:"pixels"`
	FrameRate  float64       `yaml:"frameRate"`
	Transition time.Duration `yaml:"transition"`
}

// FrameInterval is the time between published frames.
func (d DisplayConfig) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / d.FrameRate)
}

type SchedulerConfig struct {
	// StallTimeout stops an animation that has played this long. Zero
	// disables the check.
	StallTimeout time.Duration `yaml:"stallTimeout"`
}

type ControlConfig struct {
	RatePerSec int `yaml:"ratePerSec"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
	Static string `yaml:"static"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PlaylistConfig struct {
	Animations []string `yaml:"animations"`
	Loop       bool     `yaml:"loop"`
}

// CronSchedule plays an animation at the times matched by a standard
// five-field cron expression.
type CronSchedule struct {
	Cron      string `yaml:"cron"`
	Animation string `yaml:"animation"`
}

// LoadConfig reads, defaults and validates a config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = "ledseq"
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Mqtt.Topics.Control == "" {
		c.Mqtt.Topics.Control = "home/xmastree/control"
	}
	if c.Mqtt.Topics.Status == "" {
		c.Mqtt.Topics.Status = "home/xmastree/status"
	}
	if c.Display.Pixels == 0 {
		c.Display.Pixels = DefaultPixels
	}
	if c.Display.FrameRate == 0 {
		c.Display.FrameRate = 30
	}
	if c.Display.Transition == 0 {
		c.Display.Transition = 5 * time.Second
	}
	if c.Control.RatePerSec == 0 {
		c.Control.RatePerSec = 5
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":3000"
	}
	if c.HTTP.Static == "" {
		c.HTTP.Static = "client/dist"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks ranges and that every referenced animation is defined.
func (c *Config) Validate() error {
	var errs []error

	if c.Mqtt.URL == "" {
		errs = append(errs, errors.New("mqtt.url is required"))
	}
	if c.Display.Pixels <= 0 || c.Display.Pixels > 0xffff {
		errs = append(errs, fmt.Errorf("display.pixels %d out of range", c.Display.Pixels))
	}
	if c.Display.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("display.frameRate must be positive"))
	}
	if c.Scheduler.StallTimeout < 0 {
		errs = append(errs, fmt.Errorf("scheduler.stallTimeout must not be negative"))
	}

	defs := make(map[string]bool, len(c.Animations))
	for i, def := range c.Animations {
		if err := def.validate(); err != nil {
			errs = append(errs, fmt.Errorf("animations[%d]: %w", i, err))
			continue
		}
		if defs[def.Name] {
			errs = append(errs, fmt.Errorf("animations[%d]: duplicate name %q", i, def.Name))
		}
		defs[def.Name] = true
	}

	for _, def := range c.Animations {
		for _, child := range def.Then {
			if !defs[child] {
				errs = append(errs, fmt.Errorf("animation %q: then: %w %q", def.Name, ErrUnknownAnimation, child))
			}
		}
	}
	for _, name := range c.Playlist.Animations {
		if !defs[name] {
			errs = append(errs, fmt.Errorf("playlist: %w %q", ErrUnknownAnimation, name))
		}
	}
	for i, s := range c.Schedules {
		if !defs[s.Animation] {
			errs = append(errs, fmt.Errorf("schedules[%d]: %w %q", i, ErrUnknownAnimation, s.Animation))
		}
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedules[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
