package render

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Renderer hands a frame to the display. It is only called with fresh
// telemetry; on a failed cycle the display keeps what it shows.
type Renderer interface {
	Render(ctx context.Context, frame Frame) error
}

type logRenderer struct {
	log logger.Logger
}

// NewLogRenderer writes frames to the log. It is the display on headless
// hosts.
func NewLogRenderer(log logger.Logger) Renderer {
	return &logRenderer{log: log}
}

func (r *logRenderer) Render(_ context.Context, f Frame) error {
	r.log.Info().
		Str("icon", f.Icon).
		Int("battery_tile", f.BatteryTile).
		Str("panel", f.Panel).
		Str("house", f.House).
		Str("grid", f.Grid).
		Str("sunrise", f.Sunrise).
		Str("sunset", f.Sunset).
		Str("total_consumed", f.TotalConsumed).
		Str("total_generated", f.TotalGenerated).
		Str("total_exported", f.TotalExported).
		Str("updated", f.Updated).
		Msg("Frame")

	return nil
}

// Publisher is the subset of mqtt.Client used to publish frames.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type mqttRenderer struct {
	client  Publisher
	topic   string
	timeout time.Duration
}

// NewMQTTRenderer publishes each frame as retained JSON on topic, so a panel
// that subscribes later still gets the last frame.
func NewMQTTRenderer(client Publisher, topic string, timeout time.Duration) Renderer {
	return &mqttRenderer{client: client, topic: topic, timeout: timeout}
}

func (r *mqttRenderer) Render(_ context.Context, f Frame) error {
	errFactory := errors.New()

	payload, err := json.Marshal(f)
	if err != nil {
		return errFactory.Wrap(errors.ErrRender, err)
	}

	token := r.client.Publish(r.topic, 1, true, payload)
	if !token.WaitTimeout(r.timeout) {
		return errFactory.WithData(errors.ErrTimeout, "publish "+r.topic)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(errors.ErrRender, err)
	}

	return nil
}

// ConnectMQTT connects to broker and returns the client.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, errors.New().WithData(errors.ErrTimeout, "connect "+broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.New().Wrap(errors.ErrUnavailable, err)
	}

	return client, nil
}

type multiRenderer []Renderer

// Multi renders to every renderer and returns the first error.
func Multi(renderers ...Renderer) Renderer {
	return multiRenderer(renderers)
}

func (m multiRenderer) Render(ctx context.Context, f Frame) error {
	var first error
	for _, r := range m {
		if err := r.Render(ctx, f); err != nil && first == nil {
			first = err
		}
	}

	return first
}

type unavailableRenderer struct {
	err error
}

// Unavailable returns a renderer that always fails with err. It stands in
// for a display that could not be reached at bring-up, so the failure is
// reported by the cycle like any other render failure.
func Unavailable(err error) Renderer {
	return &unavailableRenderer{err: err}
}

func (r *unavailableRenderer) Render(_ context.Context, _ Frame) error {
	return errors.New().Wrap(errors.ErrRender, r.err)
}
