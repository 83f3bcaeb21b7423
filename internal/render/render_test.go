package render_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
	"codeberg.org/mutker/solartag/internal/power"
	"codeberg.org/mutker/solartag/internal/render"
	"codeberg.org/mutker/solartag/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() telemetry.Snapshot {
	return telemetry.Snapshot{
		ConsumedKw:        1.234,
		GeneratedKw:       2.0,
		DiffKw:            0.766,
		Sunrise:           "6:12 AM",
		Sunset:            "7:48 PM",
		TotalConsumedKwh:  10.45,
		TotalGeneratedKwh: 18.02,
		TotalExportedKwh:  9.1,
		Timestamp:         "2024-06-01 13:05:42",
	}
}

func TestNewFrame(t *testing.T) {
	f, err := render.NewFrame(snapshot(), power.Exporting, battery.Low)
	require.NoError(t, err)

	assert.Equal(t, "oversupply", f.Icon)
	assert.Equal(t, 2, f.BatteryTile)
	assert.Equal(t, "2.000kW", f.Panel)
	assert.Equal(t, "1.234kW", f.House)
	assert.Equal(t, "0.766kW", f.Grid)
	assert.Equal(t, render.Anchor{X: 142, Y: 74}, f.GridAnchor)
	assert.Equal(t, "6:12 AM", f.Sunrise)
	assert.Equal(t, "7:48 PM", f.Sunset)
	assert.Equal(t, "10.4kWh", f.TotalConsumed)
	assert.Equal(t, "18.0kWh", f.TotalGenerated)
	assert.Equal(t, "9.1kWh", f.TotalExported)
	assert.Equal(t, "13:05:42", f.Updated)
}

func TestNewFrameNegativeGrid(t *testing.T) {
	s := snapshot()
	s.DiffKw = -0.5

	f, err := render.NewFrame(s, power.PartialImport, battery.Full)
	require.NoError(t, err)
	assert.Equal(t, "-0.500kW", f.Grid)
	assert.Equal(t, render.Anchor{X: 136, Y: 74}, f.GridAnchor)
	assert.Equal(t, "partial", f.Icon)
}

func TestNewFrameBadTimestamp(t *testing.T) {
	s := snapshot()
	s.Timestamp = "13:05"

	_, err := render.NewFrame(s, power.Matching, battery.Mid)
	require.Error(t, err)
	assert.Equal(t, errors.ErrData, errors.CodeOf(err))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0.000kW", render.Power(0))
	assert.Equal(t, "12.346kW", render.Power(12.3456))
	assert.Equal(t, "0.0kWh", render.Energy(0))
	assert.Equal(t, "123.5kWh", render.Energy(123.46))
}

type fakeToken struct {
	mqtt.Token
	done bool
	err  error
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakePublisher struct {
	token    *fakeToken
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topic, p.qos, p.retained = topic, qos, retained
	p.payload, _ = payload.([]byte)
	return p.token
}

func TestMQTTRenderer(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{done: true}}
	f, err := render.NewFrame(snapshot(), power.Exporting, battery.Low)
	require.NoError(t, err)

	require.NoError(t, render.NewMQTTRenderer(pub, "solartag/frame", time.Second).Render(context.Background(), f))
	assert.Equal(t, "solartag/frame", pub.topic)
	assert.Equal(t, byte(1), pub.qos)
	assert.True(t, pub.retained)

	var got render.Frame
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, f, got)
}

func TestMQTTRendererFailures(t *testing.T) {
	f := render.Frame{}

	err := render.NewMQTTRenderer(&fakePublisher{token: &fakeToken{done: false}}, "t", time.Millisecond).
		Render(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTimeout, errors.CodeOf(err))

	err = render.NewMQTTRenderer(&fakePublisher{token: &fakeToken{done: true, err: stderrors.New("not connected")}}, "t", time.Millisecond).
		Render(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, errors.ErrRender, errors.CodeOf(err))
}

type recordingRenderer struct {
	frames []render.Frame
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, f render.Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestMulti(t *testing.T) {
	failing := &recordingRenderer{err: stderrors.New("panel busy")}
	ok := &recordingRenderer{}

	err := render.Multi(failing, ok).Render(context.Background(), render.Frame{Icon: "matching"})
	require.EqualError(t, err, "panel busy")
	assert.Len(t, failing.frames, 1)
	assert.Len(t, ok.frames, 1)

	require.NoError(t, render.Multi().Render(context.Background(), render.Frame{}))
}

func TestLogRenderer(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, logger.InfoLevel)

	f, err := render.NewFrame(snapshot(), power.Exporting, battery.Low)
	require.NoError(t, err)
	require.NoError(t, render.NewLogRenderer(logger.Default()).Render(context.Background(), f))

	assert.Contains(t, buf.String(), `"panel":"2.000kW"`)
	assert.Contains(t, buf.String(), `"icon":"oversupply"`)
}

func TestUnavailable(t *testing.T) {
	cause := stderrors.New("broker refused connection")

	err := render.Unavailable(cause).Render(context.Background(), render.Frame{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrRender, errors.CodeOf(err))
	assert.ErrorIs(t, err, cause)
}
