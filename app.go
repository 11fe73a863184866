package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledseq/api"
	"github.com/matt-g-everett/ledseq/stream"
)

type app struct {
	Config     stream.Config
	ConfigPath string
	Log        zerolog.Logger
	Client     mqtt.Client
	Streamer   *stream.Streamer
	Control    *stream.Control
	Timetable  *stream.Timetable
}

func newApp(cfg stream.Config, configPath string) *app {
	a := new(app)
	a.Config = cfg
	a.ConfigPath = configPath
	a.Log = newLogger(cfg.Log.Level)
	return a
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// mqttLogger routes paho's logging into zerolog.
type mqttLogger struct {
	log zerolog.Logger
}

func (l mqttLogger) Println(v ...interface{}) { l.log.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...))) }
func (l mqttLogger) Printf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (a *app) handleOnConnect(client mqtt.Client) {
	a.Log.Info().Str("broker", a.Config.Mqtt.URL).Msg("connected")
	if err := a.Control.Subscribe(); err != nil {
		a.Log.Error().Err(err).Msg("control subscription failed")
	}
}

func (a *app) handleConfigChange(ctx context.Context, cfg stream.Config) {
	if err := a.Streamer.Reload(ctx, cfg); err != nil {
		a.Log.Warn().Err(err).Msg("reload animations failed")
		return
	}
	if err := a.Timetable.Apply(cfg.Schedules); err != nil {
		a.Log.Warn().Err(err).Msg("reload schedules failed")
	}
}

func (a *app) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mqtt.ERROR = mqttLogger{log: a.Log.With().Str("component", "mqtt").Logger()}

	controller, err := stream.NewController(a.Config, a.Log)
	if err != nil {
		return err
	}

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(a.Config.Mqtt.ClientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)
	a.Streamer = stream.NewStreamer(a.Config, a.Client, controller, a.Log)
	a.Control = stream.NewControl(a.Config, a.Client, a.Streamer, a.Log)
	a.Timetable = stream.NewTimetable(a.Streamer, a.Log)

	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", a.Config.Mqtt.URL, token.Error())
	}
	defer a.Client.Disconnect(250)

	if err := a.Timetable.Apply(a.Config.Schedules); err != nil {
		return err
	}
	defer a.Timetable.Stop()

	errs := make(chan error, 2)
	go func() {
		errs <- api.NewApi(a.Streamer, a.Config.HTTP.Static, a.Log).Serve(ctx, a.Config.HTTP.Listen)
	}()
	go func() {
		errs <- stream.WatchConfig(ctx, a.ConfigPath, a.Log, func(cfg stream.Config) {
			a.handleConfigChange(ctx, cfg)
		})
	}()
	go func() {
		for err := range errs {
			if err != nil {
				a.Log.Error().Err(err).Msg("background service failed")
			}
		}
	}()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.Log.Debug().Err(err).Msg("sd_notify failed")
	}
	defer daemon.SdNotify(false, daemon.SdNotifyStopping)

	return a.Streamer.Run(ctx)
}
