package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledseq/sched"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Control message types.
const (
	MessagePlay   = "play"
	MessageSkip   = "skip"
	MessageStatus = "status"
)

const controlTimeout = 5 * time.Second

// ControlMessage is received on the control topic.
type ControlMessage struct {
	Type      string `json:"type"`
	Animation string `json:"animation,omitempty"`
}

// StatusMessage is published on the status topic in reply to every control
// message.
type StatusMessage struct {
	Request ControlMessage    `json:"request"`
	Error   string            `json:"error,omitempty"`
	Queue   []sched.EntryInfo `json:"queue"`
}

// A Player accepts requests from outside the render loop.
type Player interface {
	Play(ctx context.Context, name string) error
	Skip(ctx context.Context) error
	Snapshot(ctx context.Context) ([]sched.EntryInfo, error)
}

// Control applies control messages received over MQTT.
type Control struct {
	log     zerolog.Logger
	client  mqtt.Client
	topic   string
	status  string
	player  Player
	limiter *rate.Limiter
	publish func(payload []byte) error
}

// NewControl creates a Control for the control and status topics of cfg.
func NewControl(cfg Config, client mqtt.Client, player Player, log zerolog.Logger) *Control {
	c := new(Control)
	c.log = log.With().Str("component", "control").Logger()
	c.client = client
	c.topic = cfg.Mqtt.Topics.Control
	c.status = cfg.Mqtt.Topics.Status
	c.player = player
	c.limiter = rate.NewLimiter(rate.Limit(cfg.Control.RatePerSec), cfg.Control.RatePerSec)
	c.publish = func(payload []byte) error {
		token := client.Publish(c.status, 0, false, payload)
		token.Wait()
		return token.Error()
	}
	return c
}

// Subscribe listens on the control topic. Call it from the client's
// on-connect handler so the subscription survives reconnects.
func (c *Control) Subscribe() error {
	token := c.client.Subscribe(c.topic, 0, c.handleClientMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, token.Error())
	}
	c.log.Info().Str("topic", c.topic).Msg("subscribed")
	return nil
}

func (c *Control) handleClientMessage(client mqtt.Client, msg mqtt.Message) {
	c.log.Debug().Uint16("id", msg.MessageID()).Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("control message")

	if !c.limiter.Allow() {
		c.log.Warn().Msg("control message dropped, rate limit exceeded")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	reply := c.Handle(ctx, msg.Payload())
	b, err := json.Marshal(reply)
	if err != nil {
		c.log.Error().Err(err).Msg("encode status")
		return
	}
	if err := c.publish(b); err != nil {
		c.log.Warn().Err(err).Msg("publish status failed")
	}
}

// Handle applies one encoded ControlMessage and describes the result.
func (c *Control) Handle(ctx context.Context, payload []byte) StatusMessage {
	var reply StatusMessage
	if err := json.Unmarshal(payload, &reply.Request); err != nil {
		reply.Error = fmt.Sprintf("invalid message: %v", err)
		return c.withQueue(ctx, reply)
	}

	var err error
	switch reply.Request.Type {
	case MessagePlay:
		err = c.player.Play(ctx, reply.Request.Animation)
	case MessageSkip:
		err = c.player.Skip(ctx)
	case MessageStatus:
	default:
		err = fmt.Errorf("unknown message type %q", reply.Request.Type)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("type", reply.Request.Type).Msg("control request failed")
		reply.Error = err.Error()
	}

	return c.withQueue(ctx, reply)
}

func (c *Control) withQueue(ctx context.Context, reply StatusMessage) StatusMessage {
	queue, err := c.player.Snapshot(ctx)
	if err != nil {
		if reply.Error == "" {
			reply.Error = err.Error()
		}
		return reply
	}
	reply.Queue = queue
	return reply
}
